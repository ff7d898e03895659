package model

import "time"

type User struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountName    string    `gorm:"column:account_name;size:128;not null;uniqueIndex:uk_users_account_name" json:"account_name"`
	HashedPassword string    `gorm:"column:hashed_password;size:191;not null" json:"-"`
	Address        string    `gorm:"column:address;size:191;not null" json:"address,omitempty"`
	NumSellItems   int       `gorm:"column:num_sell_items;not null;default:0" json:"num_sell_items"`
	LastBump       time.Time `gorm:"column:last_bump;not null" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserSimple is the public projection embedded in item lists and details.
type UserSimple struct {
	ID           uint64 `json:"id"`
	AccountName  string `json:"account_name"`
	NumSellItems int    `json:"num_sell_items"`
}

func (u *User) Simple() UserSimple {
	return UserSimple{
		ID:           u.ID,
		AccountName:  u.AccountName,
		NumSellItems: u.NumSellItems,
	}
}
