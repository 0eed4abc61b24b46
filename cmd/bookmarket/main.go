package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"bookmarket/internal/auth"
	"bookmarket/internal/config"
	"bookmarket/internal/http/handlers"
	"bookmarket/internal/lock"
	applog "bookmarket/internal/log"
	"bookmarket/internal/repos"
	"bookmarket/internal/storage"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	var sinks []io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Logger().Warn().Err(err).Str("path", cfg.LogFile).Msg("could not open log file")
		} else {
			defer f.Close()
			sinks = append(sinks, os.Stdout, f)
		}
	}
	applog.Init(cfg.LogLevel, sinks...)
	lg := applog.Logger()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		lg.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if cfg.SeedDemo {
		if err := repos.SeedDemo(context.Background(), db); err != nil {
			lg.Fatal().Err(err).Msg("seed demo data")
		}
	}

	// Purchase lock: Redis when configured, otherwise in-process.
	var locks lock.Locker = lock.NewMemory()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		rl, err := lock.NewRedis(rdb, "bookmarket:lock:", cfg.LockTTL)
		if err != nil {
			lg.Fatal().Err(err).Msg("redis lock")
		}
		locks = rl
		lg.Info().Str("addr", cfg.RedisAddr).Msg("purchase lock: redis")
	}

	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	var covers storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		ms, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			lg.Fatal().Err(err).Msg("minio store")
		}
		covers = ms
		lg.Info().Str("endpoint", cfg.MinioEndpoint).Str("bucket", cfg.MinioBucket).Msg("covers: minio")
	} else {
		ls, err := storage.NewLocalStore(mediaDir)
		if err != nil {
			lg.Fatal().Err(err).Msg("media dir")
		}
		covers = ls
		lg.Info().Str("dir", mediaDir).Msg("covers: local")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	deps := handlers.NewDeps(db, cfg, tokens, locks, covers)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.BodyLimit,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "Request was throttled."})
		},
	}))

	app.Get("/media/*", handlers.Media(mediaDir))

	deps.Routes(app)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found."})
	})

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			lg.Error().Err(err).Msg("shutdown")
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		lg.Fatal().Err(err).Msg("listen")
	}
}
