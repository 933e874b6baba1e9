// Package main runs the leave management HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leavedesk/backend/config"
	"github.com/leavedesk/backend/internal/auth"
	"github.com/leavedesk/backend/internal/leaverequests"
	"github.com/leavedesk/backend/internal/middleware"
	"github.com/leavedesk/backend/internal/notifications"
	"github.com/leavedesk/backend/internal/organizations"
	"github.com/leavedesk/backend/internal/realtime"
	"github.com/leavedesk/backend/internal/routing"
	"github.com/leavedesk/backend/internal/worker"
	"github.com/leavedesk/backend/pkg/database"
	"github.com/leavedesk/backend/pkg/mailer"
	"github.com/leavedesk/backend/pkg/queue"
	"github.com/leavedesk/backend/pkg/redis"
	"github.com/leavedesk/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	events := realtime.NewEvents(hub)

	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth (users + profiles)
	authRepo := auth.NewRepository(pool)

	// Organizations: registration saga + sheet linking
	orgRepo := organizations.NewRepository(pool)
	recipientRepo := notifications.NewRecipientRepository(pool)
	orgService := organizations.NewService(orgRepo, authRepo, recipientRepo, jobQueue, logger)
	orgHandler := organizations.NewHandler(orgRepo, orgService, logger)

	authHandler := auth.NewHandler(authRepo, orgRepo, jwtService, logger)

	// Notifications: recipient list + delivery log + queue dispatcher
	logRepo := notifications.NewLogRepository(pool)
	notifHandler := notifications.NewHandler(recipientRepo, logRepo, logger)
	dispatcher := notifications.NewQueueDispatcher(jobQueue, recipientRepo, logger)

	// Leave requests: state machine + reference data
	leaveRepo := leaverequests.NewRepository(pool)
	leaveService := leaverequests.NewService(leaveRepo, authRepo, dispatcher, events, logger)
	leaveHandler := leaverequests.NewHandler(leaveService, leaveRepo, logger)
	referenceRepo := leaverequests.NewReferenceRepository(pool)

	// Page-level route protection (redirect decision engine)
	engine := routing.NewEngine(cfg.Identity.BaseURL, logger)

	// WebSocket session: token -> user + organization room
	wsResolve := func(token string) (userID, orgID uuid.UUID, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		profile, err := authRepo.GetProfile(context.Background(), claims.UserID)
		if err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		if profile == nil || profile.OrganizationID == nil {
			return uuid.Nil, uuid.Nil, errors.New("no organization assigned")
		}
		return claims.UserID, *profile.OrganizationID, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.PageGuard(engine, jwtService))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Organization registration (public; creates tenant + first admin)
	router.POST("/organizations/register", orgHandler.Register)

	// Protected API (JWT + resolved profile)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	api.Use(middleware.LoadProfile(authRepo, logger))
	{
		// Organizations
		api.GET("/organizations/me", orgHandler.GetMine)
		api.PUT("/organizations/sheet", orgHandler.LinkSheet)

		// Notification recipients and delivery log (admin + ownership)
		api.GET("/organizations/:id/recipients", notifHandler.ListRecipients)
		api.POST("/organizations/:id/recipients", notifHandler.AddRecipient)
		api.PATCH("/organizations/:id/recipients/:recipientId", notifHandler.SetRecipientActive)
		api.GET("/organizations/:id/notifications", notifHandler.ListLogs)

		// Reference data
		api.GET("/leave-types", referenceRepo.LeaveTypes)
		api.GET("/pay-periods", referenceRepo.PayPeriods)

		// Leave requests
		api.POST("/leave-requests", leaveHandler.Submit)
		api.GET("/leave-requests", leaveHandler.ListMine)
		api.GET("/organizations/:id/leave-requests", leaveHandler.ListByOrganization)
		api.PATCH("/leave-requests/:id/approve", leaveHandler.Approve)
		api.PATCH("/leave-requests/:id/deny", leaveHandler.Deny)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsResolve))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process notification worker; cmd/worker runs the same processor
	// standalone when email volume needs its own deployment.
	mail := mailer.New(mailer.Config{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		User:        cfg.Email.SMTPUser,
		Pass:        cfg.Email.SMTPPass,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, logger)
	processor := worker.NewNotificationProcessor(mail, logRepo, jobQueue, logger)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go processor.Run(workerCtx)
	logger.Info("notification worker started", zap.Bool("mailer_dry_run", mail.DryRun()))

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
