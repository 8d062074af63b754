package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"voyara/internal/availability"
	"voyara/internal/reservations/events"
	"voyara/internal/reservations/handler"
	"voyara/internal/reservations/repository"
	"voyara/internal/reservations/service"
	"voyara/internal/reservations/validator"
	"voyara/pkg/config"
	"voyara/pkg/contracts"
	"voyara/pkg/kafka"
	kafka_config "voyara/pkg/kafka/config"
	kafka_middleware "voyara/pkg/kafka/middleware"
	"voyara/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const dlqTopic = "dlq-reservations"

// Application wires the reservation engine to its storage, broker and
// HTTP surfaces and owns the lifecycle of the background workers.
type Application struct {
	cfg              *config.Config
	server           *http.Server
	engine           service.ReservationEngine
	sweeper          *availability.Sweeper
	producer         *kafka.Producer
	paymentConsumer  *kafka.Consumer
	consumerCancel   context.CancelFunc
	consumerDone     chan struct{}
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.UserRateLimiter
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// Engine exposes the wired reservation engine, mainly for composing
// additional surfaces on top of the same instance.
func (a *Application) Engine() service.ReservationEngine {
	return a.engine
}

// Setup builds the full dependency graph. Mongo must already be
// connected via cfg.SetMongo.
func (a *Application) Setup() error {
	log := a.cfg.Log

	bookingRepo := repository.NewMongoBookingRepository(a.cfg)
	resourceRepo := repository.NewMongoResourceRepository(a.cfg)
	paymentRepo := repository.NewMongoPaymentRepository(a.cfg)
	holdRepo := repository.NewMongoHoldRepository(a.cfg)

	index := availability.New(holdRepo, bookingRepo, a.cfg.HoldTTL, log)
	a.sweeper = availability.NewSweeper(index, a.cfg.HoldSweepInterval, log)

	kafkaCfg := kafka_config.Load()

	producer, err := kafka.NewProducer(kafkaCfg, a.cfg.BookingEventsTopic, dlqTopic)
	if err != nil {
		return err
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	a.producer = producer

	bookingEvents := events.NewBookingEvents(producer, log)
	bookingValidator := validator.NewBookingValidator(log)
	catalog := service.NewResourceCatalog(resourceRepo, bookingValidator, log)

	a.engine = service.NewReservationEngine(
		bookingRepo,
		resourceRepo,
		paymentRepo,
		index,
		bookingValidator,
		bookingEvents,
		a.cfg,
	)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		a.cfg.PaymentEventsTopic,
		a.cfg.PaymentConsumerGroup,
		dlqTopic,
		events.PaymentOutcomeHandler(a.engine, log),
	)
	if err != nil {
		return err
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	a.paymentConsumer = consumer

	a.setHealthHandler()
	a.setAppHandler(
		handler.NewBookingHandler(a.engine, log),
		handler.NewResourceHandler(catalog, log),
	)
	a.setAppServer()

	log.Info("Reservation engine wired",
		"hold_ttl", a.cfg.HoldTTL,
		"sweep_interval", a.cfg.HoldSweepInterval,
		"booking_events_topic", a.cfg.BookingEventsTopic,
		"payment_events_topic", a.cfg.PaymentEventsTopic,
	)
	return nil
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(a.cfg.Client.Mongo, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(appHandlers ...contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewUserRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.DefaultUserExtractor,
		a.cfg.Log,
	)

	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.UserRateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHTTPHandler = h
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Run starts the HTTP server, the hold sweeper and the payment result
// consumer, then blocks until a shutdown signal or a fatal server error.
func (a *Application) Run() {
	log := a.cfg.Log

	a.sweeper.Start()

	consumerCtx, cancel := context.WithCancel(context.Background())
	a.consumerCancel = cancel
	a.consumerDone = make(chan struct{})
	go func() {
		defer close(a.consumerDone)
		if err := a.paymentConsumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error("Payment consumer stopped", "error", err)
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	log := a.cfg.Log
	log.Info("Starting graceful shutdown...")

	a.consumerCancel()
	<-a.consumerDone
	if err := a.paymentConsumer.Close(); err != nil {
		log.Error("Failed to close payment consumer", "error", err)
	}

	a.sweeper.Stop()
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	if err := a.producer.Close(); err != nil {
		log.Error("Failed to close event producer", "error", err)
	}

	log.Info("Server stopped gracefully")
}
