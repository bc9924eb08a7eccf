package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tabserv/internal/config"
	"tabserv/internal/database"
	"tabserv/internal/handlers"
	"tabserv/internal/orders"
	"tabserv/internal/tabs"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run owns every deferred cleanup so a failed listen still disconnects the
// store before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	var (
		orderStore orders.Store
		tabStore   tabs.Store
	)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Println("[DB] [WARN] using in-memory store, data is lost on restart")
		orderStore = database.NewMemoryOrderStore()
		tabStore = database.NewMemoryTabStore()
	default:
		client, err := database.Connect(cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}()

		db := client.Database(cfg.DBName)
		log.Println("MongoDB connected to:", db.Name())

		if err := database.EnsureOrderIndexes(db); err != nil {
			log.Printf("[DB] [WARN] order index warning: %v", err)
		}
		if err := database.EnsureTabIndexes(db); err != nil {
			log.Printf("[DB] [WARN] tab index warning: %v", err)
		}

		orderStore = database.NewOrderStore(db)
		tabStore = database.NewTabStore(db)
	}

	orderSvc := orders.NewService(orderStore)
	tabSvc := tabs.NewService(tabStore)

	r := gin.Default()

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	handlers.Register(r, orderSvc, tabSvc, cfg.JWTSecret, cfg.RequestTimeout)

	return r.Run(":" + cfg.Port)
}
