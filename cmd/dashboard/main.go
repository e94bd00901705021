package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/config"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/delivery/telegram"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/infrastructure/cache"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/infrastructure/dummyjson"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/infrastructure/exporter"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/infrastructure/logger"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/infrastructure/printer"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/infrastructure/storage"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.ConfigForEnvironment(cfg.Env, cfg.LogLevel)
	if cfg.LogFormat != "" {
		logCfg.Format = cfg.LogFormat
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Catalog API
	client, err := dummyjson.NewClient(dummyjson.Options{
		BaseURL:   cfg.CatalogBaseURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.APIRateLimit,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	// 2. Local storage
	store, err := storage.NewSQLiteLocalStorage(cfg.StorageDBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()
	log.Info("storage ready", zap.String("path", cfg.StorageDBPath))

	// 3. Query cache
	var queryCache repository.QueryCache = cache.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer redisCache.Close()
			queryCache = redisCache
			log.Info("redis cache ready", zap.String("addr", cfg.RedisAddr))
		}
	}

	// 4. Use cases
	catalogUseCase := usecase.NewCatalogUseCase(client, queryCache, cfg.CacheTTL, log)
	defer catalogUseCase.Close()

	cartUseCase, err := usecase.NewCartUseCase(ctx, store, client, log)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	targets := make([]printer.Target, 0, len(cfg.Printers))
	for _, p := range cfg.Printers {
		targets = append(targets, printer.Target{Name: p.Name, Address: p.Address})
	}
	printerUseCase := usecase.NewPrinterUseCase(
		printer.NewNetworkDriver(targets, printer.Options{}, log),
		store,
		log,
	)
	if len(targets) > 0 {
		setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := printerUseCase.Setup(setupCtx); err != nil {
			log.Warn("printer setup failed", zap.Error(err))
		}
		cancel()
	}

	// 5. Bot
	bot, err := telegram.NewBotHandler(
		cfg.TelegramToken,
		cfg.OwnerChatID,
		catalogUseCase,
		cartUseCase,
		printerUseCase,
		exporter.NewExcelExporter(),
		log,
	)
	if err != nil {
		return err
	}

	if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("stopped")
	return nil
}
