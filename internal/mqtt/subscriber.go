package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"chemsaver-backend/internal/models"
)

// Subscriber handles MQTT subscriptions and writes telemetry records
// to the ingest channel
type Subscriber struct {
	client mqtt.Client

	// Output channel (written by subscriber, read by the optimizer service)
	IngestChan chan *models.IngestRecord

	// Topic pattern, e.g. "well/+/production"
	productionTopic string
}

// SubscriberConfig holds configuration for MQTT subscriber
type SubscriberConfig struct {
	ProductionTopic string // e.g., "well/+/production"
}

// NewSubscriber creates a new MQTT subscriber with the ingest channel
func NewSubscriber(client mqtt.Client, config SubscriberConfig, ingestChan chan *models.IngestRecord) *Subscriber {
	return &Subscriber{
		client:          client,
		IngestChan:      ingestChan,
		productionTopic: config.ProductionTopic,
	}
}

// SubscribeAll subscribes to all configured telemetry topics
func (s *Subscriber) SubscribeAll() error {
	if s.productionTopic != "" {
		if err := s.subscribeToTopic(s.productionTopic, s.handleProduction); err != nil {
			return fmt.Errorf("failed to subscribe to production topic: %w", err)
		}
		log.Printf("Subscribed to production topic: %s", s.productionTopic)
	}

	return nil
}

// subscribeToTopic is a helper function to subscribe to a topic with a handler
func (s *Subscriber) subscribeToTopic(topic string, handler mqtt.MessageHandler) error {
	token := s.client.Subscribe(topic, 1, handler)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// handleProduction parses production telemetry and writes it to the
// ingest channel. Malformed payloads are dropped here; semantic
// validation is the engine's job.
func (s *Subscriber) handleProduction(client mqtt.Client, msg mqtt.Message) {
	var rec models.ProductionRecord
	if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
		log.Printf("Error unmarshaling production record: %v", err)
		return
	}

	// Extract well ID from topic (well/{well_id}/production)
	wellID := extractWellID(msg.Topic())
	if wellID == "" {
		log.Printf("Could not extract well ID from topic: %s", msg.Topic())
		return
	}

	ingest := &models.IngestRecord{
		WellID: wellID,
		Record: rec,
	}

	log.Printf("Received production record from %s: ts=%d", wellID, rec.Timestamp)

	// Write to channel (non-blocking with timeout)
	select {
	case s.IngestChan <- ingest:
		// Successfully sent
	case <-time.After(1 * time.Second):
		log.Printf("Warning: Ingest channel full, dropping record from %s", wellID)
	}
}

// extractWellID extracts the well ID from an MQTT topic
// Example: "well/well-001/production" -> "well-001"
func extractWellID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
