package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"gitlab.com/open-soft/go-signal-bot/src/config"
)

func main() {
	pwd, _ := os.Getwd()
	if _, err := os.Stat(fmt.Sprintf("%s/.env", pwd)); err == nil {
		log.Println(".env is found, loading variables...")
		err = godotenv.Load()
		if err != nil {
			log.Println(err)
		}
	}

	parametersFile := os.Getenv("PARAMETERS_FILE")
	if parametersFile == "" {
		parametersFile = "parameters.yaml"
	}

	parameters, err := config.LoadParameters(parametersFile)
	if err != nil {
		log.Fatal(fmt.Sprintf("Parameters can't be loaded: %s", err.Error()))
	}

	// configuration faults halt startup before any decision is made
	if err := parameters.Validate(); err != nil {
		log.Fatal(err.Error())
	}

	container := config.InitServiceContainer(parameters)
	defer container.DB.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go container.SnapshotPublisher.Run(ctx)

	container.StreamIngestor.Warmup(ctx)
	container.StreamIngestor.Connect(ctx)
	go container.StreamIngestor.Run(ctx)

	decisionLoopDone := make(chan struct{})
	go func() {
		container.DecisionLoop.Run(ctx)
		close(decisionLoopDone)
	}()

	scheduler := cron.New()

	// heartbeat for operators tailing the log
	_, _ = scheduler.AddFunc("@every 1m", func() {
		log.Printf(
			"Heartbeat: %d/%d positions open, %d instruments on cooldown watch",
			container.PositionLedger.OpenCount(),
			parameters.MaxConcurrentPositions,
			len(container.CooldownTracker.Records()),
		)
	})

	// re-seed windows that went stale during a long stream outage
	_, _ = scheduler.AddFunc("@every 5m", func() {
		container.StreamIngestor.Warmup(ctx)
	})

	scheduler.Start()
	defer scheduler.Stop()

	http.HandleFunc("/status", container.StatusController.GetStatusAction)
	http.HandleFunc("/position/list", container.StatusController.GetPositionListAction)
	http.HandleFunc("/score/list", container.StatusController.GetScoreListAction)
	http.HandleFunc("/trade/list", container.StatusController.GetTradeListAction)

	go func() {
		if err := http.ListenAndServe(":8080", nil); err != nil {
			log.Printf("HTTP server stopped: %s", err.Error())
		}
	}()

	log.Printf("Engine started: %d instruments, decision interval %s", len(parameters.Instruments), parameters.DecisionInterval())

	<-ctx.Done()

	log.Println("Shutdown requested, waiting for decision loop to finish current tick...")
	<-decisionLoopDone
	log.Println("Shutdown complete")
}
