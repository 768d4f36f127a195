// Package monitor is the read-only observability sidecar that runs next to
// the raw protocol socket: a small Fiber control plane reporting peer state,
// a QR-coded identity display, and a webhook/WebSocket event fan-out. It is
// additive only. It never substitutes for, delays, or reorders the
// protocol's own Messages; this package only observes events the peer
// already produced.
package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vertexhub/securelink/internal/monitor/webhook"
	"github.com/vertexhub/securelink/internal/params"
	"github.com/vertexhub/securelink/internal/peer"
)

// StatusSource is satisfied by *peer.Server and *peer.Client: anything the
// monitor can poll for a lifecycle snapshot and subscribe to transitions
// on.
type StatusSource interface {
	Status() peer.Status
	OnTransition(func(peer.Status))
}

// Server is the monitor sidecar's HTTP/WebSocket control plane.
type Server struct {
	app        *fiber.App
	logger     *zap.SugaredLogger
	dispatcher *webhook.Dispatcher
	role       string

	mu        sync.Mutex
	listeners []chan peer.Status
}

// New builds a monitor Server observing source (the local peer.Server or
// peer.Client), guarded by apiKey for its mutating webhook endpoints. role
// is "server" or "client", surfaced on /status for operator clarity.
func New(role string, source StatusSource, apiKey string, logger *zap.SugaredLogger) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "securelink-monitor",
		ServerHeader: "securelink-monitor",
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s := &Server{
		app:        app,
		logger:     logger,
		dispatcher: webhook.NewDispatcher(logger),
		role:       role,
	}

	source.OnTransition(s.handleTransition)
	s.setupRoutes(source, apiKey)
	return s
}

func (s *Server) setupRoutes(source StatusSource, apiKey string) {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "role": s.role})
	})

	s.app.Get("/status", func(c *fiber.Ctx) error {
		st := source.Status()
		return c.JSON(fiber.Map{
			"role":              s.role,
			"state":             st.State.String(),
			"roundsCompleted":   st.RoundsCompleted,
			"messagesExchanged": st.MessagesExchanged,
			"lastError":         st.LastError,
		})
	})

	s.app.Get("/identity/qr", func(c *fiber.Ctx) error {
		png, err := GenerateIdentityQRPNG()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	})

	s.app.Get("/identity/qr/base64", func(c *fiber.Ctx) error {
		dataURI, err := GenerateIdentityQRBase64()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"qr": dataURI})
	})

	s.app.Get("/identity", func(c *fiber.Ctx) error {
		text, err := IdentityText()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"identity": text})
	})

	webhooks := s.app.Group("/webhooks", apiKeyAuth(apiKey))
	webhooks.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"webhooks": s.dispatcher.List()})
	})
	webhooks.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			URL    string   `json:"url"`
			Events []string `json:"events"`
			Secret string   `json:"secret"`
		}
		if err := c.BodyParser(&req); err != nil || req.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
		}
		if len(req.Events) == 0 {
			req.Events = []string{"*"}
		}
		wh, err := s.dispatcher.Register(req.URL, req.Events, req.Secret)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(wh)
	})
	webhooks.Delete("/:id", func(c *fiber.Ctx) error {
		if err := s.dispatcher.Unregister(c.Params("id")); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"deleted": true})
	})

	s.app.Get("/events", adaptor.HTTPHandlerFunc(s.eventsWebSocket))
}

// handleTransition is the StatusSource.OnTransition callback: it dispatches
// a webhook event matching the new state and fans the snapshot out to every
// connected /events WebSocket listener.
func (s *Server) handleTransition(st peer.Status) {
	eventType := s.eventTypeFor(st)
	s.dispatcher.Dispatch(eventType, st)

	s.mu.Lock()
	listeners := append([]chan peer.Status(nil), s.listeners...)
	s.mu.Unlock()
	for _, ch := range listeners {
		select {
		case ch <- st:
		default:
			// A slow observer does not block protocol progress; it just
			// misses intermediate snapshots.
		}
	}
}

// eventTypeFor maps a peer.Status snapshot to the webhook event vocabulary.
// A failure before authentication completes is reported as an auth failure;
// one after authentication (e.g. a dropped connection mid-exchange) is
// reported as a generic session failure. The message-count default
// distinguishes an echoing server from a receiving client by role.
func (s *Server) eventTypeFor(st peer.Status) string {
	switch st.State {
	case peer.StateKeyAgreed:
		return webhook.EventKeyAgreed
	case peer.StateAuthenticated:
		return webhook.EventAuthenticated
	case peer.StateClosed:
		return webhook.EventSessionClosed
	case peer.StateFailed:
		if st.RoundsCompleted < params.AuthenticationRounds {
			return webhook.EventAuthFailed
		}
		return webhook.EventSessionFailed
	default:
		if s.role == "server" {
			return webhook.EventMessageEchoed
		}
		return webhook.EventMessageReceived
	}
}

// eventsWebSocket upgrades to a WebSocket and streams every subsequent
// status transition as JSON. This is purely a monitoring fan-out, never the
// protocol's own transport.
func (s *Server) eventsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "closing")

	ch := make(chan peer.Status, 8)
	s.mu.Lock()
	s.listeners = append(s.listeners, ch)
	s.mu.Unlock()
	defer s.removeListener(ch)

	ctx := r.Context()
	for {
		select {
		case st := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, statusPayload(st))
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) removeListener(ch chan peer.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func statusPayload(st peer.Status) fiber.Map {
	return fiber.Map{
		"state":             st.State.String(),
		"roundsCompleted":   st.RoundsCompleted,
		"messagesExchanged": st.MessagesExchanged,
		"lastError":         st.LastError,
	}
}

// Start listens on addr until the process exits or Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Infof("Monitor listening on %s", addr)
	return s.app.Listen(addr)
}

// Stop gracefully shuts the monitor's Fiber app down.
func (s *Server) Stop() error {
	return s.app.Shutdown()
}
