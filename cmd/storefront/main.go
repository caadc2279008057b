package main

import (
	"context"
	"log"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/checkout"
	"github.com/sakashimaa/storefront/internal/service"
	"github.com/sakashimaa/storefront/internal/store"
	"github.com/sakashimaa/storefront/internal/transport/http"
	"github.com/sakashimaa/storefront/internal/transport/http/handler"
	"github.com/sakashimaa/storefront/pkg/config"
	"github.com/sakashimaa/storefront/pkg/kafka"
	"github.com/sakashimaa/storefront/pkg/metrics"
	"github.com/sakashimaa/storefront/pkg/outbox"
	"github.com/sakashimaa/storefront/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger, err := config.NewLogger(cfg.LoggerConfig())
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.Tracing.Enabled {
		tp, err := utils.InitTracer(ctx, utils.TracerConfig{
			ServiceName: "storefront",
			Endpoint:    cfg.Tracing.Endpoint,
			Env:         cfg.Env,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			log.Fatalf("Failed to init trace: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error shutting down telemetry: %v\n", err)
			} else {
				log.Println("Telemetry stopped correctly")
			}
		}()
	}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	if cfg.Metrics.Enabled {
		go func() {
			mux := nethttp.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(reg))
			log.Println("Metrics server is listening on " + cfg.Metrics.Port)

			if err := nethttp.ListenAndServe(cfg.Metrics.Port, mux); err != nil {
				log.Printf("Metrics serving failed: %v", err)
			}
		}()
	}

	tokens, closeTokens := newTokenStore(cfg.Tokens, logger)
	defer closeTokens()

	events, closeEvents := newPublisher(ctx, cfg.Kafka, m, logger)
	defer closeEvents()

	api := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, tokens, logger, apiclient.WithMetrics(m))

	validate := service.NewValidator()

	var products service.ProductService = service.NewProductService(api, validate)
	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("Error closing redis cache", zap.Error(err))
			}
		}()

		products = service.NewCachedProductService(products, rdb, cfg.Cache.TTL, logger)
	}

	ui := store.NewUIStore(0)
	deps := store.Deps{Logger: logger, UI: ui, Events: events}

	cartStore := store.NewCartStore(service.NewCartService(api, validate), deps)
	authStore := store.NewAuthStore(service.NewAuthService(api, tokens, validate), cartStore, deps)
	productStore := store.NewProductStore(products, deps)
	orderStore := store.NewOrderStore(service.NewOrderService(api, validate), deps)
	addressStore := store.NewAddressStore(service.NewAddressService(api, validate), deps)
	categoryStore := store.NewCategoryStore(service.NewCategoryService(api, validate), deps)
	brandStore := store.NewBrandStore(service.NewBrandService(api, validate), deps)

	api.SetSessionExpiredHook(authStore.HandleSessionExpired)

	pricing := checkout.NewPricing(cfg.Checkout.TaxRate, cfg.Checkout.Shipping)
	flow := checkout.NewFlow(pricing, orderStore, cartStore, deps)

	bootCtx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
	if err := authStore.LoadCurrentUser(bootCtx); err == nil && authStore.IsAuthenticated() {
		_ = addressStore.Load(bootCtx)
	}
	_ = cartStore.Refresh(bootCtx)
	cancel()

	app := http.NewApp(http.ServerConfig{
		LimiterMax:        cfg.Limiter.Max,
		LimiterExpiration: cfg.Limiter.Expiration,
	})

	timeout := cfg.HTTP.Timeout
	handlers := &http.Handlers{
		Cart:     handler.NewCartHandler(cartStore, pricing, validate, logger, timeout),
		Checkout: handler.NewCheckoutHandler(flow, cartStore, authStore, addressStore, validate, logger, timeout),
		Product:  handler.NewProductHandler(productStore, validate, logger, timeout),
		Catalog:  handler.NewCatalogHandler(categoryStore, brandStore, validate, logger, timeout),
		Account:  handler.NewAccountHandler(orderStore, addressStore, validate, logger, timeout),
		Auth:     handler.NewAuthHandler(authStore, validate, logger, timeout),
		UI:       handler.NewUIHandler(ui),
	}

	http.RegisterRoutes(app, handlers)

	logger.Info("Storefront started!", zap.String("api", cfg.API.BaseURL))

	go func() {
		log.Println("HTTP Service listening on: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP port %v: %v\n", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownContext); err != nil {
		log.Printf("Error shutting down HTTP app: %v\n", err)
	} else {
		log.Println("HTTP App stopped gracefully")
	}
}

func newTokenStore(cfg config.Tokens, logger *zap.Logger) (apiclient.TokenStore, func()) {
	switch cfg.Driver {
	case "memory":
		return apiclient.NewMemoryTokenStore(), func() {}
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return apiclient.NewRedisTokenStore(rdb, cfg.Prefix), func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("Error closing redis token store", zap.Error(err))
			}
		}
	case "file":
		return apiclient.NewFileTokenStore(cfg.FilePath), func() {}
	default:
		log.Fatalf("unknown tokens driver %q", cfg.Driver)
		return nil, nil
	}
}

func newPublisher(ctx context.Context, cfg config.Kafka, m *metrics.Metrics, logger *zap.Logger) (kafka.EventPublisher, func()) {
	if len(cfg.Brokers) == 0 {
		logger.Info("No kafka brokers configured, domain events disabled")
		return kafka.NewNoopPublisher(), func() {}
	}

	producer, err := kafka.NewProducer(cfg.Brokers, logger)
	if err != nil {
		log.Fatalf("Error creating kafka producer: %v", err)
	}

	box := outbox.New(cfg.OutboxSize, cfg.MaxAttempts, logger)
	processor := outbox.NewProcessor(box, producer, cfg.Topic, cfg.FlushInterval, logger, m)

	done := make(chan struct{})
	go func() {
		defer close(done)
		processor.Start(ctx)
	}()

	return box, func() {
		<-done
		if err := producer.Close(); err != nil {
			logger.Warn("Error closing kafka producer", zap.Error(err))
		}
	}
}
