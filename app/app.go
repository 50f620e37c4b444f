package app

import (
	"context"
	"log"
	"os"
	"time"

	"uniloans/db"
	"uniloans/realtime"
	"uniloans/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Aliases so handlers stay short.
type Ctx = gin.Context
type H = gin.H

// App aggregates every process-wide dependency.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Hub    *realtime.Hub
	Log    *zap.Logger
	Config Config

	tokens *session.TokenStore
}

// Config is read from environment variables.
type Config struct {
	RedisAddr  string
	RedisPwd   string
	WebOrigin  string
	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	SweepInterval     time.Duration
	SweepInitialDelay time.Duration

	BootstrapAdminName     string
	BootstrapAdminCedula   string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

func (a *App) Tokens() *session.TokenStore { return a.tokens }

func MustNew() *App {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis", zap.Error(err))
	}

	hub := realtime.NewHub(logger.Named("hub"))

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Hub: hub, Log: logger, Config: cfg,
		tokens: session.NewTokenStore(rdb, cfg.RefreshTTL),
	}
}

func (a *App) Close() {
	a.Hub.Stop()
	_ = a.RDB.Close()
	_ = a.Log.Sync()
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	dur := func(k string, def time.Duration) time.Duration {
		if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
			return d
		}
		return def
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	return Config{
		RedisAddr:  get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:   os.Getenv("REDIS_PASSWORD"),
		WebOrigin:  get("WEB_ORIGIN", "http://localhost:5173"),
		JWTSecret:  []byte(secret),
		AccessTTL:  dur("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL: dur("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		SweepInterval:     dur("SWEEP_INTERVAL", time.Minute),
		SweepInitialDelay: dur("SWEEP_INITIAL_DELAY", 10*time.Second),

		BootstrapAdminName:     get("BOOTSTRAP_ADMIN_NAME", "Administrador"),
		BootstrapAdminCedula:   os.Getenv("BOOTSTRAP_ADMIN_CEDULA"),
		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
	}
}
