package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/iho/gosettle/internal/adapter/gateway"
	httpAdapter "github.com/iho/gosettle/internal/adapter/http"
	"github.com/iho/gosettle/internal/adapter/http/handler"
	"github.com/iho/gosettle/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/gosettle/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gosettle/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gosettle/internal/adapter/repository/redis"
	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/config"
	"github.com/iho/gosettle/internal/infrastructure/eventdispatch"
	"github.com/iho/gosettle/internal/infrastructure/eventpublisher"
	"github.com/iho/gosettle/internal/infrastructure/metrics"
	"github.com/iho/gosettle/internal/infrastructure/postgres"
	"github.com/iho/gosettle/internal/infrastructure/redis"
	"github.com/iho/gosettle/internal/iso20022"
	"github.com/iho/gosettle/internal/usecase"
)

// stores is the ledger store selected by STORE_DRIVER.
type stores struct {
	txManager       usecase.TransactionManager
	accountRepo     usecase.AccountRepository
	transactionRepo usecase.TransactionRepository
	entryRepo       usecase.EntryRepository
	ledgerRepo      usecase.LedgerRepository
	outboxRepo      usecase.OutboxRepository
	auditSink       usecase.AuditSink
	retrier         usecase.Retrier
}

// app is the wired service.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	checks := map[string]handler.Pinger{}

	var st stores
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if cfg.AutoMigrate {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		checks["postgres"] = pool
		logger.Info().Msg("connected to postgres")

		st = stores{
			txManager:       postgresRepo.NewTxManager(pool),
			accountRepo:     postgresRepo.NewAccountRepository(pool),
			transactionRepo: postgresRepo.NewTransactionRepository(pool),
			entryRepo:       postgresRepo.NewEntryRepository(pool),
			ledgerRepo:      postgresRepo.NewLedgerRepository(pool),
			outboxRepo:      postgresRepo.NewOutboxRepository(pool),
			auditSink:       postgresRepo.NewAuditRepository(pool),
			retrier:         postgresRepo.NewRetrier(logger),
		}
	default:
		store := memoryRepo.NewStore()
		st = stores{
			txManager:       store,
			accountRepo:     memoryRepo.NewAccountRepository(store),
			transactionRepo: memoryRepo.NewTransactionRepository(store),
			entryRepo:       memoryRepo.NewEntryRepository(store),
			ledgerRepo:      memoryRepo.NewLedgerRepository(store),
			outboxRepo:      memoryRepo.NewOutboxRepository(store),
			auditSink:       memoryRepo.NewAuditRepository(store),
		}
		logger.Info().Msg("using in-memory ledger store")
	}

	var (
		idempotencyStore usecase.IdempotencyStore
		notifier         usecase.NotificationGateway = gateway.NewLogNotifier(logger, cfg.NotifyLatency)
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		notifier = redisRepo.NewNotifier(client)
		logger.Info().Msg("connected to redis")
	} else {
		logger.Warn().Msg("REDIS_URL not set: idempotency keys disabled, notifications logged")
	}

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kafka := eventpublisher.NewKafkaPublisher(eventpublisher.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  logger,
		})
		a.closers = append(a.closers, func() { _ = kafka.Close() })
		publisher = kafka
	}
	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: st.outboxRepo,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	idGen := postgresRepo.NewULIDGenerator()
	registry := eventdispatch.NewRegistry().
		Register(domain.EventTypePaymentRequested, eventdispatch.Registration{
			Name:    "settlement",
			Handler: usecase.NewSettlementHandler(st.accountRepo, st.transactionRepo, st.entryRepo, idGen, logger),
			Policy:  eventdispatch.Fatal,
		}).
		Register(domain.EventTypePaymentRequested, eventdispatch.Registration{
			Name:    "notification",
			Handler: usecase.NewNotificationHandler(notifier, logger),
			Policy:  eventdispatch.BestEffort,
		}).
		Register(domain.EventTypePaymentRequested, eventdispatch.Registration{
			Name:    "audit",
			Handler: usecase.NewAuditHandler(st.auditSink, idGen),
			Policy:  eventdispatch.BestEffort,
		})

	paymentUC := usecase.NewPaymentUseCase(usecase.PaymentUseCaseConfig{
		TxManager:       st.txManager,
		AccountRepo:     st.accountRepo,
		TransactionRepo: st.transactionRepo,
		EntryRepo:       st.entryRepo,
		OutboxRepo:      st.outboxRepo,
		IDGen:           idGen,
		Dispatcher: eventdispatch.New(eventdispatch.Config{
			Registry:          registry,
			Logger:            logger,
			Metrics:           m,
			BestEffortTimeout: cfg.HandlerTimeout,
		}),
		Enricher: usecase.NewEnricher(usecase.EnricherConfig{
			AccountRepo:      st.accountRepo,
			IDGen:            idGen,
			FallbackCurrency: cfg.FallbackCurrency,
			Logger:           logger,
		}),
		Generator:      iso20022.NewGenerator(nil),
		FraudScorer:    gateway.NewRandomScorer(cfg.FraudLatency),
		FraudThreshold: cfg.FraudThreshold,
		ScoringTimeout: cfg.FraudScoringTimeout,
		Retrier:        st.retrier,
		Metrics:        m,
		Logger:         logger,
	})
	accountUC := usecase.NewAccountUseCase(st.accountRepo, idGen, st.auditSink)
	ledgerUC := usecase.NewLedgerUseCase(st.ledgerRepo)

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(checks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.rateLimiter,
		HTTPMetrics:      middleware.NewHTTPMetrics(reg),
		Gatherer:         reg,
		Logger:           logger,
		CORSOrigins:      cfg.CORSAllowedOrigins,
	})

	return a, nil
}

// cleanupLimiters drops idle rate limiter entries until ctx is done.
func (a *app) cleanupLimiters(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.rateLimiter.Cleanup(every)
		}
	}
}
