package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"librarydesk/config"
	"librarydesk/db"
	"librarydesk/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config config.Config
	Log    *slog.Logger

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// MustNew connects to the database and Redis named by cfg and exits the
// process when either is unreachable.
func MustNew(cfg config.Config) *App {
	logger := NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// --- DB ---
	dbConn, err := db.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("database", "err", err)
		os.Exit(1)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}

	return Build(cfg, dbConn, rdb, logger)
}

// Build assembles the router around already opened connections.
func Build(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, logger *slog.Logger) *App {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Log: logger,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
