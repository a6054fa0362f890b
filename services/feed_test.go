package services

import (
	"testing"
	"time"

	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOrderFeed_SubscribeAndBroadcast(t *testing.T) {
	feed := NewOrderFeed()

	snapshots, unsubscribe := feed.Subscribe()
	defer unsubscribe()
	assert.Equal(t, 1, feed.SubscriberCount())

	orders := []models.Order{{ID: "ORDER1001"}, {ID: "ORDER1002"}}
	feed.Broadcast(orders)

	select {
	case snapshot := <-snapshots:
		assert.Len(t, snapshot, 2)
		assert.Equal(t, "ORDER1001", snapshot[0].ID)
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for snapshot")
	}
}

func TestOrderFeed_Unsubscribe(t *testing.T) {
	feed := NewOrderFeed()

	snapshots, unsubscribe := feed.Subscribe()
	unsubscribe()

	assert.Equal(t, 0, feed.SubscriberCount())

	// The channel is closed so readers shut down cleanly
	_, open := <-snapshots
	assert.False(t, open)

	// Unsubscribing twice is harmless
	unsubscribe()
	assert.Equal(t, 0, feed.SubscriberCount())
}

func TestOrderFeed_SlowSubscriberDoesNotBlock(t *testing.T) {
	feed := NewOrderFeed()

	snapshots, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	// Overrun the subscriber buffer; Broadcast must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			feed.Broadcast([]models.Order{{ID: "ORDER1001"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a slow subscriber")
	}

	// The subscriber still gets the buffered snapshots it kept up with
	select {
	case snapshot := <-snapshots:
		assert.Len(t, snapshot, 1)
	case <-time.After(time.Second):
		t.Fatal("Expected at least one buffered snapshot")
	}
}

func TestOrderFeed_PublishOrders(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	for i, id := range []string{"ORDER1001", "ORDER1002"} {
		order := models.Order{
			ID:                   id,
			CustomerName:         "Customer",
			Phone:                "0123456789",
			Address:              "KL",
			ServiceType:          "Cleaning",
			QuotedPrice:          80,
			AssignedTechnicianID: "TECH001",
			AssignedTechnician:   "Ahmad Faizal",
			Status:               models.StatusPending,
			Version:              1,
			CreatedAt:            time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&order).Error; err != nil {
			t.Fatalf("Failed to seed order: %v", err)
		}
	}

	feed := NewOrderFeed()
	snapshots, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	feed.PublishOrders(db)

	select {
	case snapshot := <-snapshots:
		if assert.Len(t, snapshot, 2) {
			// Newest first
			assert.Equal(t, "ORDER1002", snapshot[0].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for published snapshot")
	}
}

func TestOrderFeed_PublishSkipsWithoutSubscribers(t *testing.T) {
	feed := NewOrderFeed()

	// No subscribers: PublishOrders must not touch the database at all.
	// A nil DB would panic if it did.
	assert.NotPanics(t, func() {
		feed.PublishOrders(nil)
	})
}
