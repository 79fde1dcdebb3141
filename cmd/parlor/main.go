package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/parlor-chat/parlor/internal/config"
	"github.com/parlor-chat/parlor/internal/database"
	"github.com/parlor-chat/parlor/internal/events"
	"github.com/parlor-chat/parlor/internal/handlers"
	"github.com/parlor-chat/parlor/internal/hub"
	"github.com/parlor-chat/parlor/internal/middleware"
	"github.com/parlor-chat/parlor/internal/repository"
	"github.com/parlor-chat/parlor/internal/routes"
	"github.com/parlor-chat/parlor/internal/server"
	"github.com/parlor-chat/parlor/internal/services"
	"github.com/parlor-chat/parlor/internal/session"
	"github.com/parlor-chat/parlor/internal/utils"
	wsrv "github.com/parlor-chat/parlor/internal/ws"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.App.Env == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()
	sugar.Infof("starting parlor in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	userRepo := repository.NewMongoUserRepo(db)
	channelRepo := repository.NewMongoChannelRepo(db)
	messageRepo := repository.NewMongoMessageRepo(db)
	inviteRepo := repository.NewMongoInviteRepo(db)

	sessions := session.NewRedisStore(rdb)
	jwtMgr := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTLMinutes, cfg.JWT.RefreshTTLDays)

	h := hub.New()
	var producer *events.Producer
	var consumer *events.Consumer
	if cfg.Kafka.Enabled {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		consumer = events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, events.InstanceGroupID(cfg.Kafka.GroupID), sugar)
		sugar.Infof("kafka fan-out enabled on %v topic %s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	bus := events.NewBus(h, producer, sugar)

	authSvc := services.NewAuthService(userRepo, inviteRepo, sessions, jwtMgr, bus, sugar)
	chatSvc := services.NewChatService(userRepo, channelRepo, messageRepo, bus, sugar)
	adminSvc := services.NewAdminService(userRepo, inviteRepo, sessions, bus, sugar,
		time.Duration(cfg.Security.InviteTTLHours)*time.Hour)

	handler := handlers.New(authSvc, chatSvc, adminSvc, sugar)
	limiter := middleware.NewRateLimiter(rdb, "auth_rl", cfg.Security.AuthRateLimit,
		time.Duration(cfg.Security.AuthRateWindowSecs)*time.Second)
	wsServer := wsrv.NewServer(h, jwtMgr, chatSvc, sugar)

	app := server.New(cfg, logger)
	routes.Setup(app, handler, jwtMgr, limiter, wsServer)

	runCtx, stopConsumer := context.WithCancel(context.Background())
	if consumer != nil {
		go consumer.Run(runCtx, bus)
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			sugar.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutCtx); err != nil {
		sugar.Errorf("server shutdown: %v", err)
	}
	stopConsumer()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			sugar.Errorf("kafka consumer close: %v", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			sugar.Errorf("kafka producer close: %v", err)
		}
	}
	if err := mongoClient.Disconnect(shutCtx); err != nil {
		sugar.Errorf("mongo disconnect: %v", err)
	}
	if err := rdb.Close(); err != nil {
		sugar.Errorf("redis close: %v", err)
	}
	sugar.Info("shutdown complete")
}
