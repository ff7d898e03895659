package service

import (
	"context"
	"net/http"

	"github.com/yshino/fleamarket-backend/internal/model"
	"github.com/yshino/fleamarket-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// The same message covers unknown account and wrong password so the
// response does not leak which accounts exist.
const badCredentialsMsg = "アカウント名かパスワードが間違えています"

type AccountService interface {
	Register(ctx context.Context, accountName, address, password string) (*model.User, error)
	Login(ctx context.Context, accountName, password string) (*model.User, error)
}

type accountService struct {
	users repository.UserRepository
}

func NewAccountService(users repository.UserRepository) AccountService {
	return &accountService{users: users}
}

func (s *accountService) Register(ctx context.Context, accountName, address, password string) (*model.User, error) {
	if accountName == "" || address == "" || password == "" {
		return nil, NewError(http.StatusBadRequest, "all parameters are required")
	}

	if _, err := s.users.FindByAccountName(ctx, accountName); err == nil {
		return nil, NewError(http.StatusUnauthorized, badCredentialsMsg)
	} else if !isNotFound(err) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		AccountName:    accountName,
		HashedPassword: string(hashed),
		Address:        address,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *accountService) Login(ctx context.Context, accountName, password string) (*model.User, error) {
	if accountName == "" || password == "" {
		return nil, NewError(http.StatusBadRequest, "all parameters are required")
	}

	u, err := s.users.FindByAccountName(ctx, accountName)
	if err != nil {
		if isNotFound(err) {
			return nil, NewError(http.StatusUnauthorized, badCredentialsMsg)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, NewError(http.StatusUnauthorized, badCredentialsMsg)
	}
	return u, nil
}
