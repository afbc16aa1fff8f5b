package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"gitlab.com/open-soft/go-signal-bot/src/client"
	"gitlab.com/open-soft/go-signal-bot/src/controller"
	"gitlab.com/open-soft/go-signal-bot/src/repository"
	"gitlab.com/open-soft/go-signal-bot/src/service"
	"gitlab.com/open-soft/go-signal-bot/src/service/exchange"
	"gitlab.com/open-soft/go-signal-bot/src/service/market"
	"gitlab.com/open-soft/go-signal-bot/src/service/strategy"
	"gitlab.com/open-soft/go-signal-bot/src/utils"
)

type Container struct {
	Parameters Parameters

	DB  *sql.DB
	RDB *redis.Client
	Ctx *context.Context

	VenueClient        *client.VenueClient
	FeatureCache       *market.FeatureCache
	StreamIngestor     *market.StreamIngestor
	ScoringEngine      *strategy.ScoringEngine
	PositionLedger     *exchange.PositionLedger
	CooldownTracker    *exchange.CooldownTracker
	DecisionLoop       *exchange.DecisionLoop
	SnapshotPublisher  *service.SnapshotPublisher
	TradeRepository    *repository.TradeRepository
	SnapshotRepository *repository.SnapshotRepository
	StatusController   *controller.StatusController
}

// InitServiceContainer wires every service once and hands them out by
// reference. No component reaches for globals.
func InitServiceContainer(parameters Parameters) Container {
	db, err := sql.Open("mysql", os.Getenv("DATABASE_DSN"))
	if err != nil {
		log.Fatal(fmt.Sprintf("MySQL can't connect: %s", err.Error()))
	}

	db.SetMaxIdleConns(64)
	db.SetMaxOpenConns(64)
	db.SetConnMaxLifetime(time.Minute)

	var ctx = context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_DSN"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	httpClient := client.HttpClient{}
	venueClient := client.VenueClient{
		ApiKey:         os.Getenv("VENUE_API_KEY"),
		ApiSecret:      os.Getenv("VENUE_API_SECRET"),
		DestinationURI: os.Getenv("VENUE_API_DSN"),
		HttpClient:     &httpClient,
	}

	tradeRepository := repository.TradeRepository{
		DB:  db,
		RDB: rdb,
		Ctx: &ctx,
	}
	snapshotRepository := repository.SnapshotRepository{
		RDB: rdb,
		Ctx: &ctx,
	}

	featureCache := market.NewFeatureCache(
		parameters.WindowSize,
		parameters.WindowHorizon(),
		parameters.MinSamples,
		parameters.ScalarGain,
	)

	streamIngestor := market.StreamIngestor{
		Cache:       featureCache,
		History:     &venueClient,
		Instruments: parameters.Instruments,
		StreamDSN:   os.Getenv("VENUE_STREAM_DSN"),
		WarmupLimit: parameters.WarmupKlineLimit,
		Channel:     make(chan []byte),
	}

	scoringEngine := strategy.ScoringEngine{
		MomentumWeight:      parameters.MomentumWeight,
		CalmnessWeight:      parameters.CalmnessWeight,
		ScalarWeight:        parameters.ScalarWeight,
		MomentumScale:       parameters.MomentumScale,
		VolatilityFloor:     parameters.VolatilityFloor,
		VolatilityCeiling:   parameters.VolatilityCeiling,
		StrongBuyThreshold:  parameters.StrongBuyThreshold,
		BuyThreshold:        parameters.BuyThreshold,
		SellThreshold:       parameters.SellThreshold,
		StrongSellThreshold: parameters.StrongSellThreshold,
	}

	positionLedger := exchange.NewPositionLedger(parameters.MaxConcurrentPositions)
	cooldownTracker := exchange.NewCooldownTracker(parameters.CooldownWindow(), parameters.LossStreakLimit)

	// a restart must not forget recent loss streaks
	cooldownTracker.Warm(tradeRepository.GetRecentClosures(500))

	snapshotPublisher := service.NewSnapshotPublisher(&snapshotRepository)

	if parameters.StopLossPercent == nil {
		log.Printf("Stop loss is DISABLED: losing positions are held until profit target, trailing stop or timeout")
	}

	decisionLoop := exchange.DecisionLoop{
		Features:        featureCache,
		Scorer:          &scoringEngine,
		Ledger:          positionLedger,
		Cooldown:        cooldownTracker,
		Gateway:         &venueClient,
		TradeRepository: &tradeRepository,
		SnapshotSink:    snapshotPublisher,
		TimeService:     &utils.TimeHelper{},
		Formatter:       &utils.Formatter{},
		Instruments:     parameters.Instruments,
		ExitRules: exchange.ExitRules{
			ProfitTargetPercent:    parameters.ProfitTargetPercent,
			StopLossPercent:        parameters.StopLossPercent,
			TrailActivationPercent: parameters.TrailActivationPercent,
			TrailDistancePercent:   parameters.TrailDistancePercent,
			MaxHoldDuration:        parameters.MaxHoldDuration(),
		},
		EntryThreshold:    parameters.EntryThreshold,
		BudgetPerPosition: parameters.BudgetPerPosition,
		QuoteAsset:        parameters.QuoteAsset,
		Interval:          parameters.DecisionInterval(),
		GatewayTimeout:    parameters.GatewayTimeout(),
	}

	statusController := controller.StatusController{
		SnapshotRepository: &snapshotRepository,
		TradeRepository:    &tradeRepository,
		Ledger:             positionLedger,
	}

	return Container{
		Parameters:         parameters,
		DB:                 db,
		RDB:                rdb,
		Ctx:                &ctx,
		VenueClient:        &venueClient,
		FeatureCache:       featureCache,
		StreamIngestor:     &streamIngestor,
		ScoringEngine:      &scoringEngine,
		PositionLedger:     positionLedger,
		CooldownTracker:    cooldownTracker,
		DecisionLoop:       &decisionLoop,
		SnapshotPublisher:  snapshotPublisher,
		TradeRepository:    &tradeRepository,
		SnapshotRepository: &snapshotRepository,
		StatusController:   &statusController,
	}
}
