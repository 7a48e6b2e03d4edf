package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shreyr69/indiport/internal/config"
	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/handler"
	"github.com/Shreyr69/indiport/internal/infra/cache"
	"github.com/Shreyr69/indiport/internal/infra/db"
	"github.com/Shreyr69/indiport/internal/infra/payment"
	infraRepo "github.com/Shreyr69/indiport/internal/infra/repository"
	"github.com/Shreyr69/indiport/internal/infra/session"
	"github.com/Shreyr69/indiport/internal/server"
	"github.com/Shreyr69/indiport/internal/usecase"
	"github.com/Shreyr69/indiport/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func newLogger(level string) zerolog.Logger {
	lv, err := zerolog.ParseLevel(level)
	if err != nil {
		lv = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lv).With().Timestamp().Str("service", "indiport").Logger()
}

func main() {
	//.envは無くてもよい（本番は環境変数）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := newLogger(cfg.LogLevel)

	policy, err := cfg.PricingPolicy()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid pricing policy")
	}

	//DB接続
	gormDB, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	rfqRepo := infraRepo.NewRFQGormRepository(gormDB)
	savedRepo := infraRepo.NewSavedProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//セッションとロック。Redisが無ければプロセス内
	var (
		sessions usecase.CheckoutSessionStore
		lock     usecase.PlaceOrderLock
		rdb      *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		cancel()
		defer rdb.Close()

		sessions = session.NewRedisStore(rdb, cfg.CheckoutSessionTTL)
		lock = session.NewRedisLock(rdb, cfg.PlaceOrderLockTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, checkout sessions are kept in memory")
		sessions = session.NewMemoryStore(cfg.CheckoutSessionTTL)
		lock = session.NewMemoryLock(cfg.PlaceOrderLockTTL)
	}
	deliveryRepo := cache.NewDeliveryMethodCache(
		infraRepo.NewDeliveryMethodGormRepository(gormDB),
		rdb,
		cfg.DeliveryMethodCache,
		log,
	)

	gateway := payment.NewRazorpayClient(payment.RazorpayConfig{
		KeyID:       cfg.RazorpayKeyID,
		KeySecret:   cfg.RazorpayKeySecret,
		APIBase:     cfg.RazorpayAPIBase,
		CheckoutURL: cfg.RazorpayCheckoutURL,
	})

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, reviewRepo, txm, clock)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	savedUC := usecase.NewSavedProductUsecase(savedRepo, productRepo, clock)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo, clock)
	deliveryUC := usecase.NewDeliveryUsecase(deliveryRepo, policy)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	orderUC := usecase.NewOrderUsecase(txm, gateway, policy, usecase.NewOrderNumberGenerator(), clock, log)
	checkoutUC := usecase.NewCheckoutUsecase(usecase.CheckoutDeps{
		Machine:    checkout.NewMachine(validator.NewCheckoutValidator()),
		Sessions:   sessions,
		Lock:       lock,
		Gateway:    gateway,
		Placer:     orderUC,
		CartItems:  cartItemRepo,
		Products:   productRepo,
		Addresses:  addressRepo,
		Deliveries: deliveryRepo,
		Policy:     policy,
		Currency:   cfg.Currency,
		IDs:        idGen,
		Clock:      clock,
		Log:        log,
	})
	statusUC := usecase.NewOrderStatusUsecase(txm, clock)
	rfqUC := usecase.NewRFQUsecase(txm, rfqRepo, productRepo, clock)

	//Handler生成
	e := server.New(cfg, log, profileRepo, server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Review:       handler.NewReviewHandler(reviewUC),
		Delivery:     handler.NewDeliveryHandler(deliveryUC),
		Cart:         handler.NewCartHandler(cartUC),
		SavedProduct: handler.NewSavedProductHandler(savedUC),
		Address:      handler.NewAddressHandler(addressUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(statusUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		RFQ:          handler.NewRFQHandler(rfqUC),
	})

	//Server起動
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server started")
		if err := server.Start(e, cfg.Addr()); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
