package services

import (
	"log"
	"sync"

	"github.com/sejuk-service/aircond-service-api/models"
	"gorm.io/gorm"
)

// OrderFeed fans whole-collection order snapshots out to subscribers.
// There is no delta protocol: every change re-delivers the full set and
// subscribers re-derive their filtered views from it.
type OrderFeed struct {
	mu          sync.RWMutex
	subscribers map[chan []models.Order]struct{}
}

var orderFeed = NewOrderFeed()

// NewOrderFeed creates an empty feed
func NewOrderFeed() *OrderFeed {
	return &OrderFeed{
		subscribers: make(map[chan []models.Order]struct{}),
	}
}

// GetOrderFeed returns the process-wide feed instance
func GetOrderFeed() *OrderFeed {
	return orderFeed
}

// Subscribe registers a new subscriber and returns its snapshot channel
// together with an unsubscribe function. The channel is buffered; a slow
// subscriber misses intermediate snapshots rather than blocking the feed.
func (f *OrderFeed) Subscribe() (<-chan []models.Order, func()) {
	ch := make(chan []models.Order, 4)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	unsubscribe := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (f *OrderFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Broadcast delivers a snapshot to every subscriber without blocking
func (f *OrderFeed) Broadcast(orders []models.Order) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subscribers {
		select {
		case ch <- orders:
		default:
			// Subscriber buffer full; it will catch up on the next snapshot
		}
	}
}

// PublishOrders reloads the full order collection and broadcasts it.
// Controllers call this after every successful mutation. A failed reload is
// logged and skipped; subscribers keep their previous snapshot until the
// next change.
func (f *OrderFeed) PublishOrders(db *gorm.DB) {
	if f.SubscriberCount() == 0 {
		return
	}

	var orders []models.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		log.Printf("order feed: failed to load snapshot: %v", err)
		return
	}
	f.Broadcast(orders)
}
