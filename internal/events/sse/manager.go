package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/gomoku-go/internal/events"
	"github.com/mcoot/gomoku-go/internal/model"
)

// GameTopic is the stream of one game's events
func GameTopic(id model.GameID) Topic {
	return Topic("game:" + string(id))
}

// PlayerTopic is the stream of matchmaking events for one player
func PlayerTopic(id model.PlayerID) Topic {
	return Topic("player:" + string(id))
}

// HubManager owns the hubs for all topics and routes published events to them
type HubManager struct {
	hubs   map[Topic]*Hub
	mu     sync.Mutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[Topic]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a topic, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(topic Topic) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[topic]; ok {
		return hub
	}

	hub := NewHub(topic, m.logger)
	m.hubs[topic] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a topic, or nil if nobody is listening
func (m *HubManager) GetHub(topic Topic) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[topic]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(topic Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[topic]; ok {
		hub.Close()
		delete(m.hubs, topic)
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for topic, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, topic)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
	return removed
}

// RunCleanup removes idle hubs every interval until ctx is done
func (m *HubManager) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.CleanupEmptyHubs()
		case <-ctx.Done():
			return
		}
	}
}

// Close shuts down every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for topic, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, topic)
	}
}

// Publish forwards an event to the hubs of the topics it concerns.
// Topics without listeners are skipped.
func (m *HubManager) Publish(_ context.Context, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("sse failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	for _, topic := range topicsFor(event) {
		if hub := m.GetHub(topic); hub != nil {
			hub.BroadcastEvent(string(event.Type), string(data))
		}
	}
}

func topicsFor(event model.Event) []Topic {
	var topics []Topic
	if event.GameID != "" {
		topics = append(topics, GameTopic(event.GameID))
	}
	switch p := event.Payload.(type) {
	case model.MatchFoundPayload:
		topics = append(topics, PlayerTopic(p.PlayerBlack), PlayerTopic(p.PlayerWhite))
	case model.QueuePayload:
		topics = append(topics, PlayerTopic(event.PlayerID))
	}
	return topics
}

// Ensure HubManager implements the interface
var _ events.Publisher = (*HubManager)(nil)
