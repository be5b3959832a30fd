package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kieracarman/bakery-storefront/internal/cart"
	"github.com/kieracarman/bakery-storefront/internal/catalog"
	"github.com/kieracarman/bakery-storefront/internal/config"
	"github.com/kieracarman/bakery-storefront/internal/events"
	"github.com/kieracarman/bakery-storefront/internal/httpapi"
	"github.com/kieracarman/bakery-storefront/internal/logging"
	"github.com/kieracarman/bakery-storefront/internal/orders"
	"github.com/kieracarman/bakery-storefront/internal/payment"
	"github.com/kieracarman/bakery-storefront/internal/storage"
	"github.com/kieracarman/bakery-storefront/internal/storefront"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("bakery stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return err
	}
	defer closeKV()

	if p, ok := kv.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}

	bridge := storage.NewBridge(kv, logger)
	state, err := bridge.Load(ctx)
	if err != nil {
		return err
	}

	catalogStore := catalog.NewStore(state.Products)
	cartStore := cart.NewStore(state.Cart)
	orderStore := orders.NewStore(state.Orders, cfg.Transitions)
	bridge.Attach(catalogStore, cartStore, orderStore)

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		conn, ch, err := events.SetupConn(cfg.AMQPURL, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		defer ch.Close()
		publisher = events.NewPublisher(ch)
	}

	sf := storefront.New(storefront.Options{
		Catalog: catalogStore,
		Cart:    cartStore,
		Orders:  orderStore,
		Pix:     payment.NewPixIssuer(cfg.PixKey, cfg.PixBeneficiary),
		Events:  publisher,
		Logger:  logger,
	})

	api := httpapi.New(sf, logger, httpapi.Options{
		CheckoutRPS:   cfg.CheckoutRPS,
		CheckoutBurst: cfg.CheckoutBurst,
		TrustProxy:    cfg.TrustProxy,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("bakery listening",
			"addr", cfg.Addr,
			"storage", cfg.Storage,
			"transitions", cfg.Transitions.String(),
			"products", catalogStore.Len(),
			"orders", len(state.Orders),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return api.SweepLimiters(gctx, 5*time.Minute, 30*time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
