package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"chemsaver-backend/internal/models"
)

// Publisher pushes optimization results back out over MQTT so pump
// controllers and dashboards can react to recommendations
type Publisher struct {
	client mqtt.Client

	// Input channel (written by the optimizer service)
	ResultChan chan *models.WellResult

	// Topic template, e.g. "well/{well_id}/recommendation"
	recommendationTopic string
}

// PublisherConfig holds configuration for MQTT publisher
type PublisherConfig struct {
	RecommendationTopic string // e.g., "well/{well_id}/recommendation"
}

// NewPublisher creates a new MQTT publisher with the result channel
func NewPublisher(client mqtt.Client, config PublisherConfig, resultChan chan *models.WellResult) *Publisher {
	return &Publisher{
		client:              client,
		ResultChan:          resultChan,
		recommendationTopic: config.RecommendationTopic,
	}
}

// Start runs the publish loop until the context is cancelled
func (p *Publisher) Start(ctx context.Context) {
	log.Println("MQTT publisher started")
	for {
		select {
		case <-ctx.Done():
			log.Println("MQTT publisher stopping")
			return
		case wr, ok := <-p.ResultChan:
			if !ok {
				log.Println("MQTT publisher stopping: result channel closed")
				return
			}
			if wr == nil {
				continue
			}
			if err := p.publishResult(wr); err != nil {
				log.Printf("Error publishing recommendation for %s: %v", wr.WellID, err)
			}
		}
	}
}

// publishResult serializes and publishes a single optimization result
func (p *Publisher) publishResult(wr *models.WellResult) error {
	topic := formatTopic(p.recommendationTopic, wr.WellID)

	rounded := wr.Result.Rounded()
	payload, err := json.Marshal(rounded)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	token := p.client.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish failed: %w", token.Error())
	}

	log.Printf("Published recommendation to %s: status=%s rate=%.3f", topic, rounded.StatusFlag, rounded.RecommendedRateGPD)
	return nil
}

// formatTopic substitutes the well ID into a topic template
func formatTopic(template, wellID string) string {
	return strings.ReplaceAll(template, "{well_id}", wellID)
}
