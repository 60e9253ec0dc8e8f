package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shonar/cart"
	"shonar/catalog"
	"shonar/checkout"
	"shonar/db"
	"shonar/kv"
	"shonar/middleware"
	"shonar/mq"
	"shonar/orders"
	"shonar/pricing"
	"shonar/ratelim"
	"shonar/rdx"
	"shonar/receipt"
	"shonar/routes"
	"shonar/userdata"
	"shonar/whatsapp"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	// read port
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	// connections
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, colls, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("❌ MongoDB connect failed: %v", err)
	}
	redisClient := rdx.Connect()

	// shopper-side durable storage rides Redis
	storage := kv.NewRedis(redisClient)

	// cross-view order events: Redis pub/sub fanned out over websockets
	hub := mq.NewHub()
	go hub.Run()
	go mq.StartOrdersWorker(ctx, redisClient, hub)
	emitter := mq.NewEmitter(redisClient)

	// catalog: mongo reader behind a short-lived cache
	catalogMongo := catalog.NewMongo(colls.Products, colls.Filters, colls.Announcements)
	catalogCache := catalog.NewCached(catalogMongo, redisClient)

	// orders and submission
	sink := orders.NewMongo(colls.Orders)
	fees := pricing.DefaultFees()
	number := whatsapp.DestinationNumber()
	submitter := &whatsapp.Submitter{
		Sink:    sink,
		Emitter: emitter,
		Number:  number,
		Fees:    fees,
	}

	// per-shopper carts and checkout machines
	carts := cart.NewManager(storage)
	machines := checkout.NewManager(carts, fees, submitter)

	h := &routes.Handlers{
		Cart:     cart.NewHandler(carts),
		Checkout: checkout.NewHandler(machines, catalogCache),
		Catalog:  catalog.NewHandler(catalogCache, catalogMongo, catalogCache),
		Orders:   orders.NewHandler(sink, emitter),
		Receipt:  receipt.NewHandler(sink, number),
		Userdata: userdata.NewHandler(userdata.NewPrefs(storage), catalogCache),
		Hub:      hub,
	}

	rateLimiter := ratelim.NewRateLimiter()
	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, rateLimiter, h)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Logging(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Shutting down order hub...")
		hub.Stop()
		carts.Close()
	})

	// start server
	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	// initiate graceful shutdown
	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Println("MongoDB disconnect error:", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Println("Redis close error:", err)
	}

	log.Println("✅ Server stopped cleanly")
}
