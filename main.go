package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aurum-payment-api/config"
	"aurum-payment-api/database"
	"aurum-payment-api/handlers"
	"aurum-payment-api/metrics"
	"aurum-payment-api/middleware"
	"aurum-payment-api/queue"
	"aurum-payment-api/services/auth"
	"aurum-payment-api/services/payment"
	"aurum-payment-api/worker"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		// Only slow requests and errors are worth a log line.
		elapsed := time.Since(start)
		if elapsed > 500*time.Millisecond || wrapper.status >= 400 {
			log.Printf(
				"%s %s %s %d %v",
				r.Method,
				r.RequestURI,
				r.RemoteAddr,
				wrapper.status,
				elapsed,
			)
		}
	})
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds | log.LUTC)

	numCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(numCPU)
	log.Printf("Server starting with %d CPUs available", numCPU)

	cfg := config.Load()
	log.Printf("Configuration loaded successfully")

	var db *database.Connection
	var err error
	for retries := 0; retries < 5; retries++ {
		db, err = database.NewConnection(cfg.Database)
		if err == nil {
			break
		}
		retryDelay := time.Duration(retries+1) * time.Second
		log.Printf("Failed to connect to database (attempt %d/5): %v. Retrying in %v...",
			retries+1, err, retryDelay)
		time.Sleep(retryDelay)
	}

	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.GetDB().PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Successfully connected to database")

	jobQueue, err := queue.NewQueue(cfg.Redis.URL, "payment_jobs")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer jobQueue.Close()
	log.Println("Successfully connected to Redis")

	rateLimiter, err := middleware.NewRateLimiter(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	defer rateLimiter.Close()

	paymentMetrics := metrics.NewPaymentMetrics()
	paymentService := payment.NewPaymentService(cfg.CardGate, cfg.BankNet).WithMetrics(paymentMetrics)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, db)

	workerConcurrency := cfg.Redis.WorkerConcurrency
	if workerConcurrency < 2 {
		workerConcurrency = 2
	} else if workerConcurrency > 8 {
		workerConcurrency = 8
	}

	paymentWorker := worker.NewWorker(jobQueue, db, paymentService, paymentMetrics, cfg.Billing)
	paymentWorker.Start(workerConcurrency)
	defer paymentWorker.Stop()
	log.Printf("Started payment worker with %d threads", workerConcurrency)

	authHandler := handlers.NewAuthHandler(jwtService)
	topupHandler := handlers.NewTopupHandler(db, paymentService, paymentMetrics, cfg)
	callbackHandler := handlers.NewCallbackHandler(db, paymentService, paymentMetrics,
		cfg.Server.BaseURL+"/topup/result")
	webhookHandler := handlers.NewWebhookHandler(db, jobQueue, paymentMetrics,
		cfg.CardGate.SignatureSecret, cfg.BankNet.SignatureSecret)
	subscriptionHandler := handlers.NewSubscriptionHandler(db, jobQueue, paymentMetrics)
	planHandler := handlers.NewPlanHandler(db)
	cardHandler := handlers.NewCardHandler(db)
	walletHandler := handlers.NewWalletHandler(db)
	mandateHandler := handlers.NewMandateHandler(db, paymentService, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)
	router.Use(middleware.SecurityHeadersMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(rateLimiter.RateLimitMiddleware())

	// Public endpoints
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/plans", planHandler.GetPlans).Methods("GET", "OPTIONS")

	// Gateway-facing endpoints. The callback carries the cardholder's
	// browser; webhooks are signed server-to-server calls.
	api.HandleFunc("/cardgate/callback", callbackHandler.HandleCallback).Methods("GET", "POST")
	api.HandleFunc("/cardgate/webhook", webhookHandler.HandleCardGateWebhook).Methods("POST")
	api.HandleFunc("/banknet/webhook", webhookHandler.HandleBankNetWebhook).Methods("POST")
	api.HandleFunc("/banknet/return", mandateHandler.HandleMandateReturn).Methods("GET", "POST")

	// Authenticated endpoints
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.AuthMiddleware(jwtService))
	authed.Use(middleware.RequireActiveBusiness())

	authed.HandleFunc("/topups", topupHandler.InitiateTopup).Methods("POST", "OPTIONS")
	authed.HandleFunc("/topups/status", topupHandler.CheckTopupStatus).Methods("GET", "OPTIONS")
	authed.HandleFunc("/wallet", walletHandler.GetWallet).Methods("GET", "OPTIONS")
	authed.HandleFunc("/wallet/transactions", walletHandler.ListTransactions).Methods("GET", "OPTIONS")
	authed.HandleFunc("/cards", cardHandler.ListCards).Methods("GET", "OPTIONS")
	authed.HandleFunc("/cards/{id}/default", cardHandler.SetDefaultCard).Methods("POST", "OPTIONS")
	authed.HandleFunc("/cards/{id}", cardHandler.DeleteCard).Methods("DELETE", "OPTIONS")
	authed.HandleFunc("/subscriptions", subscriptionHandler.Subscribe).Methods("POST", "OPTIONS")
	authed.HandleFunc("/subscriptions", subscriptionHandler.GetSubscription).Methods("GET", "OPTIONS")
	authed.HandleFunc("/subscriptions/cancel", subscriptionHandler.CancelSubscription).Methods("POST", "OPTIONS")
	authed.HandleFunc("/mandates", mandateHandler.CreateMandate).Methods("POST", "OPTIONS")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	startTime := time.Now()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		health := struct {
			Status    string `json:"status"`
			Time      string `json:"time"`
			Database  string `json:"database"`
			Redis     string `json:"redis"`
			Uptime    string `json:"uptime"`
			GoVersion string `json:"go_version"`
		}{
			Status:    "ok",
			Time:      time.Now().Format(time.RFC3339),
			Database:  "connected",
			Redis:     "connected",
			Uptime:    fmt.Sprintf("%v", time.Since(startTime)),
			GoVersion: runtime.Version(),
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer dbCancel()

		if err := db.GetDB().PingContext(dbCtx); err != nil {
			health.Status = "degraded"
			health.Database = "error"
		}

		redisCtx, redisCancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer redisCancel()

		if err := jobQueue.Client().Ping(redisCtx).Err(); err != nil {
			health.Status = "degraded"
			health.Redis = "error"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	}).Methods("GET")

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	<-stop
	log.Println("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Stopping payment worker...")
	paymentWorker.Stop()

	log.Println("Shutdown complete")
}
