package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finbooks/internal/application"
	"finbooks/internal/config"
	apiinfra "finbooks/internal/infrastructure/api"
	"finbooks/internal/infrastructure/locker"
	authmiddleware "finbooks/internal/infrastructure/middleware"
	"finbooks/internal/infrastructure/quickbooks"
	"finbooks/internal/infrastructure/repository"
	"finbooks/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	// Refresh lock: Redis when configured, in-process otherwise.
	var refreshLocker ports.Locker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		refreshLocker = locker.NewRedisLocker(redisClient, 30*time.Second, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis refresh locks")
	} else {
		refreshLocker = locker.NewMemoryLocker()
		logger.Info().Msg("Using in-process refresh locks")
	}

	clock := ports.SystemClock{}

	// Repositories
	userRepo := repository.NewMongoUserRepository(db)
	companyRepo := repository.NewMongoCompanyRepository(db)
	ledgerRepo := repository.NewMongoLedgerRepository(db)
	invoiceRepo := repository.NewMongoInvoiceRepository(db)
	connectionRepo := repository.NewMongoConnectionRepository(db)

	// QuickBooks client (token endpoint + resource API)
	qbClient := quickbooks.NewClient(cfg.QuickBooks, nil, logger)

	// Application services
	authService := application.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTValidity, clock, logger)
	companyService := application.NewCompanyService(companyRepo, logger)
	ledgerService := application.NewLedgerService(ledgerRepo, clock, logger)
	invoiceService := application.NewInvoiceService(invoiceRepo, clock, logger)
	connectionService := application.NewConnectionService(connectionRepo, qbClient, qbClient, refreshLocker, clock, logger)

	// HTTP handlers
	authHandlers := apiinfra.NewAuthHandlers(authService, logger)
	companyHandlers := apiinfra.NewCompanyHandlers(companyService, logger)
	ledgerHandlers := apiinfra.NewLedgerHandlers(ledgerService, logger)
	invoiceHandlers := apiinfra.NewInvoiceHandlers(invoiceService, logger)
	qbHandlers := apiinfra.NewQuickBooksHandlers(connectionService, logger)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	r.Post("/api/v1/auth/register", authHandlers.Register)
	r.Post("/api/v1/auth/login", authHandlers.Login)

	// The OAuth callback is a browser redirect from the consent screen and
	// carries no bearer token; the state value identifies company and user.
	r.Get("/api/v1/quickbooks/callback", qbHandlers.Callback)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.Authenticator(authService, logger))

		r.Get("/api/v1/auth/me", authHandlers.Me)

		r.Route("/api/v1/companies", func(r chi.Router) {
			r.Post("/", companyHandlers.Create)
			r.Get("/", companyHandlers.List)

			r.Route("/{companyID}", func(r chi.Router) {
				r.Get("/", companyHandlers.Get)
				r.Put("/", companyHandlers.Update)
				r.Delete("/", companyHandlers.Delete)
				r.Post("/members", companyHandlers.AddMember)

				// Ledger routes require company membership
				r.Group(func(r chi.Router) {
					r.Use(authmiddleware.CompanyMember(companyService))

					r.Post("/accounts", ledgerHandlers.CreateAccount)
					r.Get("/accounts", ledgerHandlers.ListAccounts)
					r.Get("/accounts/{accountID}", ledgerHandlers.GetAccount)
					r.Put("/accounts/{accountID}", ledgerHandlers.UpdateAccount)

					r.Post("/transactions", ledgerHandlers.PostTransaction)
					r.Get("/transactions", ledgerHandlers.ListTransactions)
					r.Get("/transactions/{transactionID}", ledgerHandlers.GetTransaction)

					r.Post("/invoices", invoiceHandlers.CreateInvoice)
					r.Get("/invoices", invoiceHandlers.ListInvoices)
					r.Get("/invoices/{invoiceID}", invoiceHandlers.GetInvoice)
					r.Put("/invoices/{invoiceID}/status", invoiceHandlers.UpdateInvoiceStatus)

					r.Post("/bills", invoiceHandlers.CreateBill)
					r.Get("/bills", invoiceHandlers.ListBills)
					r.Get("/bills/{billID}", invoiceHandlers.GetBill)
					r.Put("/bills/{billID}/status", invoiceHandlers.UpdateBillStatus)
				})
			})
		})

		// QuickBooks routes
		r.Route("/api/v1/quickbooks", func(r chi.Router) {
			r.With(authmiddleware.CompanyMember(companyService)).
				Get("/connect/{companyID}", qbHandlers.Connect)

			r.Route("/{companyID}", func(r chi.Router) {
				r.Use(authmiddleware.CompanyMember(companyService))

				r.Get("/status", qbHandlers.Status)
				r.Delete("/disconnect", qbHandlers.Disconnect)
				r.Get("/company-info", qbHandlers.CompanyInfo)
				r.HandleFunc("/proxy/*", qbHandlers.Proxy)
			})
		})
	})

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
