package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
)

const topic = "product-events"

type Event struct {
	Type      string                 `json:"type"`
	ProductID string                 `json:"product_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// Publisher emits a product.scraped event per persisted product. It is
// optional: the pipeline runs without it when no brokers are configured.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(brokers, ",")...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (p *Publisher) ProductScraped(ctx context.Context, prod *models.Product) error {
	event := Event{
		Type:      "product.scraped",
		ProductID: prod.ProductID,
		Data: map[string]interface{}{
			"store_domain": prod.StoreDomain,
			"title":        prod.Title,
			"handle":       prod.Handle,
			"variants":     len(prod.Variants),
		},
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(prod.StoreDomain + ":" + prod.ProductID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
