package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kidani/kidani-backend/internal/logger"
)

type Event string

const (
	EventJobProgress  Event = "JobProgress"
	EventJobCompleted Event = "JobCompleted"
	EventJobFailed    Event = "JobFailed"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// Client is one open event-stream connection, subscribed to a single job
// channel for its lifetime.
type Client struct {
	ID       uuid.UUID
	Channel  string
	Outbound chan Message
	done     chan struct{}
}

// Hub fans job lifecycle events out to any stream subscribed to that job's
// channel. Jobs with no listeners broadcast into the void; the hub is a
// push-style mirror of the polling status endpoint, not the source of truth.
type Hub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func JobChannel(jobID string) string {
	return "job:" + jobID
}

func (hub *Hub) Subscribe(channel string) *Client {
	channel = strings.TrimSpace(channel)
	client := &Client{
		ID:       uuid.New(),
		Channel:  channel,
		Outbound: make(chan Message, 10),
		done:     make(chan struct{}),
	}

	hub.mu.Lock()
	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*Client]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true
	hub.mu.Unlock()

	hub.logger.Debug("SSE client subscribed", "clientID", client.ID, "channel", channel)
	return client
}

func (hub *Hub) Unsubscribe(client *Client) {
	hub.mu.Lock()
	if clients, ok := hub.subscriptions[client.Channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(hub.subscriptions, client.Channel)
		}
	}
	hub.mu.Unlock()

	close(client.done)
	hub.logger.Debug("SSE client unsubscribed", "clientID", client.ID, "channel", client.Channel)
}

func (hub *Hub) Broadcast(msg Message) {
	if msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	clients, ok := hub.subscriptions[msg.Channel]
	if !ok {
		return
	}
	for c := range clients {
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping SSE message; outbound buffer full", "clientID", c.ID)
		}
	}
}

func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			hub.logger.Debug("SSE client context done", "clientID", client.ID)
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			jsonBytes, err := json.Marshal(msg)
			if err != nil {
				hub.logger.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, string(jsonBytes))
			flusher.Flush()

			// Terminal job events end the stream; the record itself stays
			// available on the status endpoint.
			if msg.Event == EventJobCompleted || msg.Event == EventJobFailed {
				return
			}
		}
	}
}
