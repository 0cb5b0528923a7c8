package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	TopicUser    = "user_events"
	TopicProduct = "product_events"
	TopicCart    = "cart_events"
	TopicComment = "comment_events"
)

func Topics() []string {
	return []string{TopicUser, TopicProduct, TopicCart, TopicComment}
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ProductIndexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
}

type ProductSearcher interface {
	ProductIndexer
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
}

type ProductCache interface {
	GetProducts(ctx context.Context) ([]models.Product, bool)
	SetProducts(ctx context.Context, items []models.Product)
	InvalidateProducts(ctx context.Context)
}

type Recorder interface {
	AuthAttempt(op, result string)
	CartItemAdded(quantity int)
	CheckoutCompleted(lines int, amount float64)
}

type nopRecorder struct{}

func (nopRecorder) AuthAttempt(string, string)     {}
func (nopRecorder) CartItemAdded(int)              {}
func (nopRecorder) CheckoutCompleted(int, float64) {}

func recorder(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// publish runs after commit. Delivery failures are logged and never undo the
// operation that produced the event.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
