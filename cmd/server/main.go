package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"pokerserver/internal/analytics"
	"pokerserver/internal/api"
	"pokerserver/internal/config"
	"pokerserver/internal/identity"
	"pokerserver/internal/metrics"
	"pokerserver/internal/table"
	"pokerserver/internal/tablemanager"
	"pokerserver/internal/tournament"
)

func main() {
	cfg := config.FromEnv()

	var kafkaPublisher *analytics.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := analytics.NewKafkaPublisher(analytics.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Printf("analytics: kafka disabled, failed to connect: %v", err)
		} else {
			kafkaPublisher = publisher
			defer kafkaPublisher.Close()
		}
	} else {
		log.Println("analytics: KAFKA_BROKERS not set, event publishing disabled")
	}

	var resultsLedger *analytics.ResultsLedger
	if cfg.PostgresDSN != "" {
		ledger, err := analytics.NewResultsLedger(cfg.PostgresDSN)
		if err != nil {
			log.Printf("analytics: postgres ledger disabled, failed to connect: %v", err)
		} else {
			resultsLedger = ledger
			defer resultsLedger.Close()
		}
	} else {
		log.Println("analytics: POSTGRES_DSN not set, results ledger disabled")
	}

	var tableAnalyticsSink table.AnalyticsSink
	var tournamentAnalyticsSink tournament.AnalyticsSink
	if kafkaPublisher != nil {
		tableAnalyticsSink = kafkaPublisher
		tournamentAnalyticsSink = kafkaPublisher
	}
	var ledgerSink tournament.LedgerSink
	if resultsLedger != nil {
		ledgerSink = resultsLedger
	}

	recorder := metrics.NewRecorder()
	tables := tablemanager.New(table.DefaultCashConfig(), recorder, tableAnalyticsSink)
	tournaments := tournament.NewManager(tournamentAnalyticsSink, ledgerSink)

	var verifier *identity.Verifier
	if token := cfg.TelegramBotToken; token != "" {
		verifier = identity.NewVerifier(token)
	}

	server := api.NewServer(tables, tournaments, verifier)
	router := server.Router()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("shutting down server...")
		for _, id := range tables.List() {
			tables.Remove(id)
		}
		os.Exit(0)
	}()

	log.Printf("poker server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
