// Package webhook delivers session lifecycle events to registered HTTP
// endpoints with HMAC-signed payloads and retry with backoff.
package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event type constants for the session lifecycle.
const (
	EventKeyAgreed       = "session.key_agreed"
	EventAuthenticated   = "session.authenticated"
	EventAuthFailed      = "session.auth_failed"
	EventMessageReceived = "message.received"
	EventMessageEchoed   = "message.echoed"
	EventSessionClosed   = "session.closed"
	EventSessionFailed   = "session.failed"
)

// Webhook is a registered delivery target.
type Webhook struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Secret    string    `json:"secret,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is the JSON body POSTed to a matching webhook.
type Event struct {
	Type      string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	WebhookID string      `json:"webhookId,omitempty"`
	Signature string      `json:"signature,omitempty"`
	Data      interface{} `json:"data"`
}

// ErrWebhookNotFound is returned by Unregister for an unknown ID.
var ErrWebhookNotFound = errors.New("webhook: not found")

// Dispatcher holds the registered webhooks and fans events out to them.
type Dispatcher struct {
	mu         sync.RWMutex
	webhooks   map[string]*Webhook
	logger     *zap.SugaredLogger
	httpClient *http.Client
	maxRetries int
}

// NewDispatcher builds an empty Dispatcher.
func NewDispatcher(logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		webhooks:   make(map[string]*Webhook),
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
	}
}

// Register adds a webhook for the given events ("*" subscribes to all).
func (d *Dispatcher) Register(url string, events []string, secret string) (*Webhook, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	wh := &Webhook{
		ID:        "wh_" + uuid.New().String()[:8],
		URL:       url,
		Events:    events,
		Secret:    secret,
		Active:    true,
		CreatedAt: time.Now(),
	}
	d.webhooks[wh.ID] = wh
	d.logger.Infof("Registered webhook %s for events %v", wh.ID, events)
	return wh, nil
}

// Unregister removes a webhook by ID.
func (d *Dispatcher) Unregister(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.webhooks[id]; !ok {
		return ErrWebhookNotFound
	}
	delete(d.webhooks, id)
	d.logger.Infof("Unregistered webhook %s", id)
	return nil
}

// List returns every registered webhook with its secret masked.
func (d *Dispatcher) List() []*Webhook {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Webhook, 0, len(d.webhooks))
	for _, wh := range d.webhooks {
		copied := *wh
		if copied.Secret != "" {
			copied.Secret = "***"
		}
		out = append(out, &copied)
	}
	return out
}

// Dispatch delivers eventType/data to every matching, active webhook in
// parallel. It never blocks the caller on network I/O, preserving the
// protocol driver's own ordering guarantees (this package only observes
// events the peer already produced).
func (d *Dispatcher) Dispatch(eventType string, data interface{}) {
	d.mu.RLock()
	matching := make([]*Webhook, 0)
	for _, wh := range d.webhooks {
		if !wh.Active {
			continue
		}
		for _, ev := range wh.Events {
			if ev == eventType || ev == "*" {
				matching = append(matching, wh)
				break
			}
		}
	}
	d.mu.RUnlock()

	for _, wh := range matching {
		go d.sendWebhook(wh, eventType, data)
	}
}

func (d *Dispatcher) sendWebhook(wh *Webhook, eventType string, data interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		WebhookID: wh.ID,
		Data:      data,
	}
	if wh.Secret != "" {
		event.Signature = d.generateSignature(event, wh.Secret)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Errorf("Failed to marshal webhook payload: %v", err)
		return
	}

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt*attempt) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(payload))
		if err != nil {
			d.logger.Errorf("Failed to create webhook request: %v", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-ID", wh.ID)
		req.Header.Set("X-Webhook-Event", eventType)
		if event.Signature != "" {
			req.Header.Set("X-Webhook-Signature", event.Signature)
		}

		resp, err := d.httpClient.Do(req)
		if err != nil {
			d.logger.Warnf("Webhook delivery failed (attempt %d): %v", attempt+1, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			d.logger.Debugf("Webhook delivered: %s -> %s", eventType, wh.URL)
			return
		}
		d.logger.Warnf("Webhook returned %d (attempt %d)", resp.StatusCode, attempt+1)
	}
	d.logger.Errorf("Failed to deliver webhook after %d attempts: %s", d.maxRetries+1, wh.URL)
}

func (d *Dispatcher) generateSignature(event Event, secret string) string {
	payload, _ := json.Marshal(event.Data)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}
