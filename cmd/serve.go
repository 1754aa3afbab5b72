package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timetracking/archive"
	"timetracking/config"
	"timetracking/directory"
	"timetracking/handlers"
	"timetracking/metrics"
	"timetracking/presence"
	"timetracking/repositories"
	"timetracking/services"
	"timetracking/utils"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and, if enabled, auto tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap()
	if err != nil {
		return err
	}
	defer utils.Sync()
	cfg := config.AppConfig

	dir, err := directory.New(cfg)
	if err != nil {
		return err
	}

	store := repositories.NewStore(db)
	m := metrics.New()

	payrollSvc := &services.PayrollService{
		Store:   store,
		Company: companyFrom(cfg),
		Metrics: m,
		Logger:  utils.Logger.Named("payroll"),
	}
	if cfg.S3Bucket != "" {
		a, err := archive.NewS3(ctx, archive.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return fmt.Errorf("statement archive: %w", err)
		}
		payrollSvc.Archive = a
		utils.Logger.Info("archiving final statements", zap.String("bucket", cfg.S3Bucket))
	}

	handlers.InitHandlers(handlers.Deps{
		Store:     store,
		Directory: dir,
		Clock:     &services.ClockService{Store: store, Metrics: m},
		Payroll:   payrollSvc,
		Users:     &services.UserService{Store: store},
		Metrics:   m,
	})

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: !cfg.IsDev(),
	})
	app.Use(recover.New())
	handlers.SetupRoutes(app)

	var wg sync.WaitGroup
	if cfg.AutoTrackingEnabled {
		tracker, closeStore, err := newTracker(ctx, cfg, store, m)
		if err != nil {
			return err
		}
		defer closeStore()
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Run(ctx)
		}()
		utils.Logger.Info("auto tracking enabled",
			zap.Duration("interval", tracker.Interval),
			zap.Duration("timeout", tracker.Timeout),
			zap.String("store", cfg.PresenceStore),
		)
	}

	listenErr := make(chan error, 1)
	go func() {
		utils.Logger.Info("listening", zap.String("port", cfg.Port))
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	utils.Logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		utils.Logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	wg.Wait()
	return nil
}

// newTracker wires the presence loop. The returned func releases the
// last-seen store.
func newTracker(ctx context.Context, cfg config.Config, store *repositories.Store, m *metrics.Metrics) (*presence.Tracker, func(), error) {
	var (
		lastSeen presence.LastSeenStore = presence.NewMemoryLastSeen()
		closer                          = func() {}
	)
	if cfg.PresenceStore == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		lastSeen = presence.NewRedisLastSeen(client)
		closer = func() { client.Close() }
	}

	return &presence.Tracker{
		Scanner:  presence.NewARPScanner(),
		Users:    store.Users,
		Sessions: store.Sessions,
		LastSeen: lastSeen,
		Metrics:  m,
		Logger:   utils.Logger.Named("presence"),
		Interval: cfg.AutoTrackingInterval,
		Timeout:  cfg.AutoTrackingTimeout,
	}, closer, nil
}
