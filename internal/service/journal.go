package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/model"
)

// SignalRecord is a persisted analysis result
type SignalRecord struct {
	Coin      string       `bson:"coin"`
	Signal    model.Signal `bson:"signal"`
	CreatedAt time.Time    `bson:"created_at"`
}

// ActionRecord is a persisted automation decision
type ActionRecord struct {
	Coin      string    `bson:"coin"`
	Action    string    `bson:"action"`
	Reason    string    `bson:"reason"`
	OrderID   string    `bson:"order_id,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// JournalService persists signals and automation actions to MongoDB for
// later review. Writes are best effort; a down database never blocks the
// trading path.
type JournalService struct {
	client  *mongo.Client
	signals *mongo.Collection
	actions *mongo.Collection
}

// NewJournalService connects to MongoDB using the configured URI
func NewJournalService() (*JournalService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	db := client.Database("regimeforge")
	log.Println("✅ [Journal] Connected to MongoDB")

	return &JournalService{
		client:  client,
		signals: db.Collection("signals"),
		actions: db.Collection("actions"),
	}, nil
}

// RecordSignal stores an analysis result
func (s *JournalService) RecordSignal(ctx context.Context, coin string, signal *model.Signal) {
	if s == nil || signal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	record := SignalRecord{Coin: coin, Signal: *signal, CreatedAt: time.Now().UTC()}
	if _, err := s.signals.InsertOne(ctx, record); err != nil {
		log.Printf("⚠️  [Journal] Failed to record signal for %s: %v", coin, err)
	}
}

// RecordAction stores an automation decision
func (s *JournalService) RecordAction(ctx context.Context, coin, action, reason, orderID string) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	record := ActionRecord{
		Coin:      coin,
		Action:    action,
		Reason:    reason,
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.actions.InsertOne(ctx, record); err != nil {
		log.Printf("⚠️  [Journal] Failed to record action for %s: %v", coin, err)
	}
}

// RecentActions returns the latest automation actions for a coin, newest
// first. A nil service (journal disabled) has no history.
func (s *JournalService) RecentActions(ctx context.Context, coin string, limit int64) ([]ActionRecord, error) {
	if s == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.actions.Find(ctx, bson.M{"coin": coin}, opts)
	if err != nil {
		return nil, fmt.Errorf("find actions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []ActionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	return records, nil
}

// Close disconnects from MongoDB
func (s *JournalService) Close(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		log.Printf("⚠️  [Journal] Disconnect error: %v", err)
	}
}
