package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-scheduler/internal/appointments"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/configs"
	"clinic-scheduler/internal/controller"
	"clinic-scheduler/internal/database"
	"clinic-scheduler/internal/logging"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/patient"
	"clinic-scheduler/internal/prescriptions"
	"clinic-scheduler/migrations"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var configPath = flag.String("config", os.Getenv("CLINIC_CONFIG"), "Config file path")

// backend holds the stores the services are built on, and the resources to release on shutdown.
type backend struct {
	appointments  appointments.Store
	doctors       appointments.Directory
	prescriptions prescriptions.Store
	users         auth.Repository
	closers       []func()
}

func (b backend) Close() {
	for _, closeFn := range b.closers {
		closeFn()
	}
}

// loadConfigurations loads system configurations based on the given config file.
func loadConfigurations() configs.Config {
	if *configPath == "" {
		log.Fatal("no config file path was given")
	}
	config, err := configs.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	return config
}

// createMemoryBackend creates stores seeded with the demo doctor, the demo patient and their
// appointments and prescriptions.
func createMemoryBackend(config configs.Config) (backend, error) {
	records := appointments.DemoAppointments(time.Now().In(config.Location()))
	users, err := auth.DemoUsers(appointments.DemoDoctorID, appointments.DemoPatientID)
	if err != nil {
		return backend{}, err
	}
	minLatency, maxLatency := config.StoreLatency()
	return backend{
		appointments:  appointments.NewMemoryStore(appointments.WithSeed(records...), appointments.WithLatency(minLatency, maxLatency)),
		doctors:       appointments.NewMemoryDirectory(appointments.DemoDoctors()...),
		prescriptions: prescriptions.NewMemoryStore(prescriptions.DemoPrescriptions(records)...),
		users:         auth.NewMemoryRepository(users...),
	}, nil
}

// createPostgresBackend connects to the database, applies the pending migrations and, when a
// Redis address is configured, caches the appointment lists.
func createPostgresBackend(ctx context.Context, config configs.Config, logger zerolog.Logger) (backend, error) {
	dbConn, err := database.NewConnection(config, logger)
	if err != nil {
		return backend{}, err
	}
	version, err := database.Migrate(dbConn, migrations.FS)
	if err != nil {
		dbConn.Close()
		return backend{}, err
	}
	logging.PrintlnInfo(logger, fmt.Sprint("database schema at version ", version))

	b := backend{
		appointments:  appointments.NewRepository(dbConn),
		doctors:       appointments.NewDoctorRepository(dbConn),
		prescriptions: prescriptions.NewRepository(dbConn),
		users:         auth.NewRepository(dbConn),
		closers:       []func(){dbConn.Close},
	}
	if config.RedisAddr() == "" {
		return b, nil
	}
	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddr()})
	if err = redisClient.Ping(ctx).Err(); err != nil {
		logging.PrintlnWarn(logger, fmt.Sprint("redis is not reachable, appointment lists will not be cached: ", err))
		_ = redisClient.Close()
		return b, nil
	}
	b.appointments = appointments.NewCachedStore(b.appointments, redisClient, config.CacheTTL(), logger)
	b.closers = append(b.closers, func() { _ = redisClient.Close() })
	return b, nil
}

func createBackend(ctx context.Context, config configs.Config, logger zerolog.Logger) backend {
	var (
		b   backend
		err error
	)
	switch config.Store() {
	case configs.StoreMemory:
		b, err = createMemoryBackend(config)
	default:
		b, err = createPostgresBackend(ctx, config, logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create the stores")
	}
	return b
}

func main() {
	// Load dependencies
	flag.Parse()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal(err)
	}
	config := loadConfigurations()
	logger := logging.New(config.LogLevel(), os.Stdout)
	location := config.Location()
	stores := createBackend(context.Background(), config, logger)

	// Init metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics, err := metrics.Middleware(registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not register the HTTP metrics")
	}
	schedulingMetrics, err := metrics.NewScheduling(registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not register the scheduling metrics")
	}

	// Init services
	privateKey := config.PrivateKey()
	tokenIssuer, err := auth.NewTokenIssuer(&privateKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create the token issuer")
	}
	authService := auth.NewService(tokenIssuer, stores.users)
	appointmentService := appointments.NewService(stores.appointments, stores.doctors, location)
	prescriptionService := prescriptions.NewService(stores.prescriptions, stores.appointments, location)
	sessions := controller.NewRegistry(stores.appointments,
		controller.WithLocation(location),
		controller.WithLogger(logger),
		controller.WithMetrics(schedulingMetrics),
	)

	// Setup the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.Heartbeat("/health"))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.Middleware(logger))
	router.Use(httpMetrics)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SetHeader("Content-type", "application/json"))
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	// Setup Auth routes
	auth.Setup(router, logger, authService)

	// Setup doctor routes
	controller.Setup(router, logger, authService, sessions, prescriptionService, location)
	prescriptions.Setup(router, logger, authService, prescriptionService)

	// Setup patient routes
	patient.Setup(router, logger, authService, appointmentService, prescriptionService, location)

	// Creates the HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.ServerPort()),
		Handler:      router,
		ErrorLog:     logging.StdLogger(logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// Channel to listen OS signalling in order to gracefully shutdown the HTTP server and other resources
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Starts the server
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	logging.PrintlnInfo(logger, fmt.Sprint("server started listening at ", config.ServerPort(), " with the ", config.Store(), " store"))

	// Listens until server stop
	<-exit
	logging.PrintlnWarn(logger, "server stopped")

	// Creates a timeout to handle resources release
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		stores.Close()
		cancel()
	}()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("an error occurred while server is shutting down")
		return
	}

	logging.PrintlnInfo(logger, "server shutdown successfully")
}
