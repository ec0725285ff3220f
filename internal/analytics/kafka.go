// Package analytics fans out finished-hand and finished-tournament
// events to secondary systems: a Kafka topic for downstream analytics
// consumers, and a Postgres table for a durable results ledger. Both
// sinks are fire-and-forget, best-effort, and never block or fail the
// table/tournament engines that feed them.
package analytics

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// KafkaConfig configures the async producer.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher publishes hand/tournament summaries asynchronously.
// Publish errors are logged, never returned or retried, matching the
// "no retry" policy for secondary analytics effects.
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
}

// NewKafkaPublisher dials the given brokers. Returns an error only if
// the producer itself cannot be constructed (e.g. malformed broker
// list); transient send failures are swallowed at publish time.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = false
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Retry.Max = 0

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	kp := &KafkaPublisher{producer: producer, topic: cfg.Topic}
	go kp.drainErrors()
	return kp, nil
}

func (kp *KafkaPublisher) drainErrors() {
	for err := range kp.producer.Errors() {
		log.Printf("analytics: kafka publish failed: %v", err)
	}
}

type handCompleteEvent struct {
	Type      string `json:"type"`
	TableID   string `json:"tableId"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp"`
}

type tournamentFinishedEvent struct {
	Type      string `json:"type"`
	Tournament string `json:"tournamentId"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp"`
}

// PublishHandComplete satisfies table.AnalyticsSink.
func (kp *KafkaPublisher) PublishHandComplete(tableID, handSummary string) {
	payload, err := json.Marshal(handCompleteEvent{
		Type:      "handComplete",
		TableID:   tableID,
		Summary:   handSummary,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	kp.producer.Input() <- &sarama.ProducerMessage{
		Topic: kp.topic,
		Key:   sarama.StringEncoder(tableID),
		Value: sarama.ByteEncoder(payload),
	}
}

// PublishTournamentFinished satisfies tournament.AnalyticsSink.
func (kp *KafkaPublisher) PublishTournamentFinished(tournamentID, summary string) {
	payload, err := json.Marshal(tournamentFinishedEvent{
		Type:      "tournamentFinished",
		Tournament: tournamentID,
		Summary:   summary,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	kp.producer.Input() <- &sarama.ProducerMessage{
		Topic: kp.topic,
		Key:   sarama.StringEncoder(tournamentID),
		Value: sarama.ByteEncoder(payload),
	}
}

// Close flushes and shuts down the underlying producer.
func (kp *KafkaPublisher) Close() error {
	return kp.producer.Close()
}
