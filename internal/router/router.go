package router

import (
	"time"

	"taka/config"
	"taka/internal/handler"
	"taka/internal/ledger"
	"taka/internal/logger"
	"taka/internal/middleware"
	"taka/internal/repository"
	"taka/internal/service"
	"taka/internal/ws"
	"taka/pkg/cloudinary"
	"taka/pkg/payout"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) (*gin.Engine, *service.WalletSyncService) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	hub := ws.NewHub()

	// The reconciliation engines go through the raw ledger store, not the
	// typed repositories, so they can touch legacy tables too.
	store := ledger.NewGormStore(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	rewardsSvc := service.NewRewardsService(cfg.Rewards)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		logger.Log.Info("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		logger.Log.Warn("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		logger.Log.Info("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc)
	approvalSvc := service.NewWithdrawalApprovalService(store)
	deletionSvc := service.NewCollectionDeletionService(store)
	syncSvc := service.NewWalletSyncService(cfg.Rewards, collectionRepo, walletRepo, rewardsSvc, notifSvc, hub)

	var payoutProvider payout.Provider
	switch cfg.Payout.Provider {
	case "mpesa":
		payoutProvider = payout.NewLiberecMpesaProvider(cfg.Payout.BaseURL, cfg.Payout.Email, cfg.Payout.Password, cfg.Payout.WebhookBaseURL)
	case "stub":
		payoutProvider = &payout.StubProvider{}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	collectionHandler := handler.NewCollectionHandler(collectionRepo, rewardsSvc, cloud)
	walletHandler := handler.NewWalletHandler(walletRepo)
	withdrawalHandler := handler.NewWithdrawalHandler(walletRepo, withdrawalRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	adminHandler := handler.NewAdminHandler(adminRepo, collectionRepo, withdrawalRepo, walletRepo, rewardsSvc, approvalSvc, deletionSvc, notifSvc, payoutProvider)
	payoutWebhookHandler := handler.NewPayoutWebhookHandler(withdrawalRepo, notifSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", authHandler.Me)
			me.GET("/wallet", walletHandler.GetWallet)
			me.GET("/transactions", walletHandler.ListTransactions)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.POST("/fcm-token", authHandler.UpdateFCMToken)
		}

		collections := api.Group("/collections")
		collections.Use(authMw)
		{
			collections.POST("", collectionHandler.Create)
			collections.GET("", collectionHandler.ListMine)
			collections.GET("/:id", collectionHandler.Get)
			collections.POST("/:id/photos", collectionHandler.UploadPhoto)
		}

		withdrawals := api.Group("/withdrawals")
		withdrawals.Use(authMw)
		{
			withdrawals.POST("", withdrawalHandler.Create)
			withdrawals.GET("", withdrawalHandler.ListMine)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/collections", adminHandler.ListCollections)
			admin.POST("/collections/:id/approve", adminHandler.ApproveCollection)
			admin.POST("/collections/:id/reject", adminHandler.RejectCollection)
			admin.POST("/delete-collection", adminHandler.DeleteCollection)
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.PATCH("/withdrawals/:id", adminHandler.UpdateWithdrawal)
			admin.POST("/withdrawals/:id/payout", adminHandler.Payout)
			admin.GET("/transactions", adminHandler.ListTransactions)
		}

		api.POST("/webhooks/withdrawal", payoutWebhookHandler.Handle)
	}

	r.GET("/ws/wallet", ws.UpgradeWalletWS(&cfg.JWT, hub))

	return r, syncSvc
}
