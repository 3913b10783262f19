package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dixieflatline76/Lumen/config"
	"github.com/dixieflatline76/Lumen/pkg/background"
	"github.com/dixieflatline76/Lumen/util/log"
)

// eventTimeout bounds the handling of a single inbound page event.
const eventTimeout = 60 * time.Second

// client is one connected page. Writes are serialized per connection;
// gorilla/websocket allows at most one concurrent writer.
type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(msg outbound) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Server is the local HTTP/WebSocket bridge between the engine and the
// page. It implements background.Renderer and background.Store: frames and
// metadata go out over the socket, page events come back in as Manager
// calls.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	upgrader   websocket.Upgrader
	addr       string

	clients   map[string]*client
	clientsMu sync.Mutex

	// Last pushed state, replayed to late joiners so a reopened tab is
	// never blank.
	lastMu    sync.Mutex
	lastFrame *background.Frame
	lastMeta  *background.CurrentMeta

	manager *background.Manager
}

// NewServer creates a bridge listening on addr once started.
func NewServer(addr string) *Server {
	s := &Server{
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// The page is served from an extension origin, never from this
			// server, so origin checks stay open.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		addr:    addr,
		clients: make(map[string]*client),
	}
	s.setupRoutes()
	return s
}

// SetManager wires the engine in. Must be called before Start.
func (s *Server) SetManager(m *background.Manager) {
	s.manager = m
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.enableCORS(s.handleHealth))
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

// enableCORS adds CORS headers so extension pages can reach localhost.
func (s *Server) enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop is called. Blocking.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "running",
		"version": config.AppVersion,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := &client{id: uuid.NewString(), conn: conn}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	log.Debugf("Page %s connected", c.id)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		log.Debugf("Page %s disconnected", c.id)
	}()

	s.replayLast(c)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.dispatch(c, data)
	}
}

// replayLast resends the last frame and metadata so a freshly opened tab
// paints immediately instead of waiting for the next change.
func (s *Server) replayLast(c *client) {
	s.lastMu.Lock()
	frame := s.lastFrame
	meta := s.lastMeta
	s.lastMu.Unlock()

	if frame != nil {
		if err := c.send(outbound{Type: MsgFrame, Frame: frame}); err != nil {
			log.Printf("Frame replay to page %s failed: %v", c.id, err)
		}
	}
	if meta != nil {
		if err := c.send(outbound{Type: MsgCurrentImage, Meta: meta}); err != nil {
			log.Printf("Metadata replay to page %s failed: %v", c.id, err)
		}
	}
}

// dispatch routes one inbound page message to the engine.
func (s *Server) dispatch(c *client, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Undecodable message from page %s: %v", c.id, err)
		return
	}

	if s.manager == nil && msg.Type != MsgPing {
		log.Printf("Message %q from page %s before engine wiring, dropped", msg.Type, c.id)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch msg.Type {
	case MsgInit:
		st, err := msg.decodeState()
		if err != nil {
			log.Printf("Bad init state from page %s: %v", c.id, err)
			return
		}
		s.manager.HandleStateInit(ctx, st)
	case MsgConfig:
		cfg, err := msg.decodeConfig()
		if err != nil {
			log.Printf("Bad config from page %s: %v", c.id, err)
			return
		}
		s.manager.HandleConfigChange(ctx, cfg)
	case MsgRefresh:
		s.manager.RefreshNow(ctx)
	case MsgApply:
		rec, err := msg.decodeRecord()
		if err != nil {
			log.Printf("Bad record from page %s: %v", c.id, err)
			return
		}
		s.manager.ApplyRecord(ctx, rec)
	case MsgVideoEnded:
		s.manager.HandleVideoEnded()
	case MsgPing:
		if err := c.send(outbound{Type: MsgPong}); err != nil {
			log.Debugf("Pong to page %s failed: %v", c.id, err)
		}
	default:
		log.Debugf("Unknown message type %q from page %s", msg.Type, c.id)
	}
}

// RenderFrame implements background.Renderer by broadcasting the frame to
// every connected page.
func (s *Server) RenderFrame(f background.Frame) {
	s.lastMu.Lock()
	s.lastFrame = &f
	s.lastMu.Unlock()

	s.broadcast(outbound{Type: MsgFrame, Frame: &f})
}

// SendPlayerCommand implements background.Renderer.
func (s *Server) SendPlayerCommand(cmd background.PlayerCommand) {
	s.broadcast(outbound{Type: MsgPlayerCommand, Command: &cmd})
}

// PublishCurrentImage implements background.Store by pushing the metadata
// to the pages, which own persistence.
func (s *Server) PublishCurrentImage(meta background.CurrentMeta) {
	s.lastMu.Lock()
	s.lastMeta = &meta
	s.lastMu.Unlock()

	s.broadcast(outbound{Type: MsgCurrentImage, Meta: &meta})
}

func (s *Server) broadcast(msg outbound) {
	s.clientsMu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.clientsMu.Unlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			log.Printf("Broadcast to page %s failed, dropping connection: %v", c.id, err)
			c.conn.Close()
			s.clientsMu.Lock()
			delete(s.clients, c.id)
			s.clientsMu.Unlock()
		}
	}
}

// ClientCount reports connected pages. Test hook.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
