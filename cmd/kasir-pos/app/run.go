package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasirlab/kasir-pos/configs"
	"github.com/kasirlab/kasir-pos/internal/adapter/backend"
	"github.com/kasirlab/kasir-pos/internal/adapter/cache"
	httpadapter "github.com/kasirlab/kasir-pos/internal/adapter/http"
	"github.com/kasirlab/kasir-pos/internal/adapter/http/middleware"
	"github.com/kasirlab/kasir-pos/internal/adapter/queue"
	"github.com/kasirlab/kasir-pos/internal/adapter/snap"
	"github.com/kasirlab/kasir-pos/internal/cart"
	"github.com/kasirlab/kasir-pos/internal/logging"
	"github.com/kasirlab/kasir-pos/internal/usecase"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	log := logging.Base()

	log.Info("kasir-pos: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq producer
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	producer, err := queue.NewRabbitProducer(ch, cfg.Rabbit.Exchange, cfg.Rabbit.RoutingKey)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	// backend REST client (plates, transactions, snap tokens)
	api := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	// payment session adapter
	sessions := snap.New(snap.Config{
		ScriptURL: cfg.Snap.ScriptURL,
		ClientKey: cfg.Snap.ClientKey,
	}, cfg.Snap.Timeout, logging.New("snap"))

	// one shared cart per terminal process
	posCart := cart.New()
	scanner := usecase.NewScanner(api, posCart, cfg.Scanner.NoticeTTL, logging.New("scan"))

	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	checkout := usecase.NewCheckout(posCart, api, api, sessions, idem, producer, logging.New("checkout"))

	// handlers + router + middleware
	pos := httpadapter.NewPOSHandler(scanner, posCart, checkout)
	pay := httpadapter.NewPaymentHandler(sessions)
	th := httpadapter.NewTokenHandler(cfg)
	auth := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(pos, pay, th, auth)

	cleanup := func() {
		_ = rdb.Close()
		_ = ch.Close()
		_ = conn.Close()
	}

	return &App{Router: router}, cleanup, nil
}
