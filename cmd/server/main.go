package main // Entry point package

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/dineshkumaran1996/library-api/internal/config"
	"github.com/dineshkumaran1996/library-api/internal/database"
	"github.com/dineshkumaran1996/library-api/internal/handler"
	"github.com/dineshkumaran1996/library-api/internal/middleware"
	"github.com/dineshkumaran1996/library-api/internal/queue"
	"github.com/dineshkumaran1996/library-api/internal/repository"
	"github.com/dineshkumaran1996/library-api/internal/router"
	queue_publisher "github.com/dineshkumaran1996/library-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable: response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	books := repository.NewBookRepo(db)
	loans := repository.NewLoanRepo(db)

	go queue.StartLoanConsumer(queue_publisher.BrokerURL())

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, users),
		Books:     handler.NewBookHandler(books, users, queue_publisher.PublishLoanEvent),
		History:   handler.NewHistoryHandler(users, loans),
		JWTSecret: cfg.JWTSecret,
		Users:     users,
		Cache:     middleware.ResponseCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
