package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vkarpenko/order-lifecycle-service/internal/application"
	"github.com/vkarpenko/order-lifecycle-service/internal/domain"
	"github.com/vkarpenko/order-lifecycle-service/internal/logger"
)

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// OrderRequest is the intake message for asynchronous order creation.
type OrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []domain.OrderItem `json:"items"`
}

// StartConsumer reads order requests and drives them through the
// lifecycle service. Malformed JSON and domain rejections (validation,
// insufficient stock) are committed and skipped; collaborator failures
// back off and retry without committing.
func StartConsumer(ctx context.Context, svc *application.OrderService, cfg ConsumerConfig) (*kafka.Reader, error) {
	brokers := strings.Split(cfg.Brokers, ",")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})

	logger.Info("kafka consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		backoff := time.Millisecond * 300
		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				time.Sleep(backoff)
				continue
			}

			var req OrderRequest
			if err = json.Unmarshal(m.Value, &req); err != nil {
				logger.Warn("kafka invalid json, skip and commit", "err", err)
				_ = r.CommitMessages(ctx, m)
				continue
			}

			order, err := svc.CreateOrder(ctx, req.CustomerID, req.Items)
			if err != nil {
				if domain.KindOf(err) != domain.KindUnknown {
					// Poison message: retrying cannot make it valid.
					logger.Warn("order request rejected, skip and commit", "customer_id", req.CustomerID, "err", err)
					_ = r.CommitMessages(ctx, m)
					continue
				}
				logger.Warn("create order failed, will retry", "customer_id", req.CustomerID, "err", err)
				time.Sleep(backoff)
				continue
			}

			logger.Info("order created from kafka", "order_id", order.ID, "partition", m.Partition, "offset", m.Offset)

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("kafka commit failed", "err", err)
			}
		}
	}()
	return r, nil
}
