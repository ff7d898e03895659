package server

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yshino/fleamarket-backend/internal/config"
	"github.com/yshino/fleamarket-backend/internal/gateway"
	"github.com/yshino/fleamarket-backend/internal/handler"
	appmw "github.com/yshino/fleamarket-backend/internal/middleware"
	"github.com/yshino/fleamarket-backend/internal/repository"
	"github.com/yshino/fleamarket-backend/internal/service"
	"github.com/yshino/fleamarket-backend/internal/storage"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(cfg *config.Config, db *gorm.DB, images storage.ImageStore) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	tm := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	evidenceRepo := repository.NewTransactionEvidenceRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	configRepo := repository.NewConfigRepository(db, cfg.DefaultPaymentServiceURL, cfg.DefaultShipmentServiceURL)

	gatewayTimeout := time.Duration(cfg.GatewayTimeoutSeconds) * time.Second
	paymentGw := gateway.NewPaymentGateway(gatewayTimeout)
	shipmentGw := gateway.NewShipmentGateway(gatewayTimeout)

	accountSvc := service.NewAccountService(userRepo)
	listingSvc := service.NewListingService(tm, itemRepo, userRepo, categoryRepo, images)
	tradeSvc := service.NewTradeService(tm, itemRepo, userRepo, categoryRepo, evidenceRepo, shippingRepo, configRepo, paymentGw, shipmentGw)
	querySvc := service.NewQueryService(tm, itemRepo, userRepo, categoryRepo, evidenceRepo, shippingRepo, configRepo, shipmentGw, images)

	session := appmw.NewSession(userRepo)

	userHandler := handler.NewUserHandler(accountSvc)
	itemHandler := handler.NewItemHandler(listingSvc, querySvc)
	tradeHandler := handler.NewTradeHandler(tradeSvc, querySvc)
	settingsHandler := handler.NewSettingsHandler(querySvc, session)
	initializeHandler := handler.NewInitializeHandler(configRepo, cfg.InitScript)

	e.POST("/initialize", initializeHandler.Initialize)

	e.GET("/new_items.json", itemHandler.NewItems)
	e.GET("/new_items/:root_category_id", itemHandler.NewCategoryItems)
	e.GET("/users/transactions.json", itemHandler.Transactions, session.RequireLogin)
	e.GET("/users/:user_id", itemHandler.UserItems)
	e.GET("/items/:item_id", itemHandler.GetItem, session.RequireLogin)
	e.POST("/items/edit", itemHandler.Edit, session.RequireLogin)
	e.POST("/sell", itemHandler.Sell, session.RequireLogin)
	e.POST("/bump", itemHandler.Bump, session.RequireLogin)

	e.POST("/buy", tradeHandler.Buy, session.RequireLogin)
	e.POST("/ship", tradeHandler.Ship, session.RequireLogin)
	e.POST("/ship_done", tradeHandler.ShipDone, session.RequireLogin)
	e.POST("/complete", tradeHandler.Complete, session.RequireLogin)
	e.GET("/transactions/:transaction_evidence_id", tradeHandler.QRCode, session.RequireLogin)

	e.GET("/settings", settingsHandler.Settings)
	e.POST("/login", userHandler.Login)
	e.POST("/register", userHandler.Register)

	if local, ok := images.(*storage.LocalStore); ok {
		e.Static("/upload", local.Dir())
	}

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Echo exposes the router for handler-level tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}
