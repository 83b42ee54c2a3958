// Package event publishes simulation lifecycle events to Kafka.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
)

// Event types published to the simulation events topic
const (
	TypeBacktestCompleted = "backtest.completed"
	TypeBacktestFailed    = "backtest.failed"
)

// BacktestEvent is the payload published when a backtest run finishes
type BacktestEvent struct {
	Type        string    `json:"type"`
	BacktestID  string    `json:"backtest_id"`
	UserID      int       `json:"user_id"`
	StrategyID  string    `json:"strategy_id"`
	Symbol      string    `json:"symbol"`
	Status      string    `json:"status"`
	TotalTrades int       `json:"total_trades"`
	FinalEquity float64   `json:"final_equity,omitempty"`
	Error       string    `json:"error,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Producer sends simulation events to Kafka topics. A nil Producer is
// safe to use and publishes nothing, so the service can run without a
// broker.
type Producer struct {
	mu       sync.Mutex
	writers  map[string]*kafka.Writer
	brokers  []string
	clientID string
	logger   *zap.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, clientID string, logger *zap.Logger) *Producer {
	return &Producer{
		writers:  make(map[string]*kafka.Writer),
		brokers:  brokers,
		clientID: clientID,
		logger:   logger,
	}
}

// getWriter returns the writer for a topic, creating it on first use
func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: p.clientID,
		},
	}

	p.writers[topic] = writer
	return writer
}

// Publish sends an event to a topic keyed by the given key
func (p *Producer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	if p == nil {
		return nil
	}

	jsonValue, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("Failed to marshal event",
			zap.String("topic", topic),
			zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
		Time:  time.Now(),
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	return nil
}

// PublishBacktestCompleted publishes a completion event for a finished run
func (p *Producer) PublishBacktestCompleted(ctx context.Context, topic, backtestID string, userID int, result *model.BacktestResult) error {
	if p == nil {
		return nil
	}

	return p.Publish(ctx, topic, backtestID, BacktestEvent{
		Type:        TypeBacktestCompleted,
		BacktestID:  backtestID,
		UserID:      userID,
		StrategyID:  result.StrategyID,
		Symbol:      result.Symbol,
		Status:      model.BacktestStatusCompleted,
		TotalTrades: result.TotalTrades,
		FinalEquity: result.FinalBalance,
		OccurredAt:  time.Now().UTC(),
	})
}

// PublishBacktestFailed publishes a failure event for a run that produced
// no result
func (p *Producer) PublishBacktestFailed(ctx context.Context, topic, backtestID string, userID int, request *model.BacktestRequest, cause error) error {
	if p == nil {
		return nil
	}

	return p.Publish(ctx, topic, backtestID, BacktestEvent{
		Type:       TypeBacktestFailed,
		BacktestID: backtestID,
		UserID:     userID,
		StrategyID: request.StrategyID,
		Symbol:     request.Symbol,
		Status:     model.BacktestStatusFailed,
		Error:      cause.Error(),
		OccurredAt: time.Now().UTC(),
	})
}

// Close closes all topic writers
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
