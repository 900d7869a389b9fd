package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"orange-brew/internal/auth"
	"orange-brew/internal/catalog"
	"orange-brew/internal/config"
	"orange-brew/internal/httpx"
	kafkax "orange-brew/internal/kafka"
	"orange-brew/internal/orders"
	"orange-brew/internal/postgres"
	"orange-brew/internal/receipts"
	"orange-brew/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Bootstrap(ctx, db); err != nil {
		log.Fatalf("db bootstrap: %v", err)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prodCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prodCreated.Start(ctx)
	prodConfirmed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPaymentConfirmed, 1024)
	prodConfirmed.Start(ctx)

	authSvc := &auth.Service{
		Repo:      &auth.Repo{DB: db},
		JWTSecret: cfg.JWTSecret,
	}
	catalogSvc := &catalog.Service{
		Store: &catalog.Repo{DB: db},
		Cache: &catalog.RedisCache{RDB: rdb},
	}
	orderSvc := &orders.Service{
		Ledger:   &orders.Repo{DB: db},
		Catalog:  catalogSvc,
		Receipts: receipts.NewFSStore(cfg.UploadsDir, cfg.PublicBaseURL),
		Emitter: &orders.KafkaEmitter{
			Producers: map[string]*kafkax.Producer{
				orders.TopicOrderCreated:     prodCreated,
				orders.TopicPaymentConfirmed: prodConfirmed,
			},
			Service: cfg.ServiceName,
		},
		Cache: &orders.RedisStatusCache{RDB: rdb},
	}

	router := httpx.NewRouter(httpx.Deps{
		Auth:       authSvc,
		Catalog:    catalogSvc,
		Orders:     orderSvc,
		UploadsDir: cfg.UploadsDir,
		Metrics:    httpx.NewMetrics(),
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prodCreated.Close()
	prodConfirmed.Close()
	cancel()
	prodCreated.WaitClosed()
	prodConfirmed.WaitClosed()
}
