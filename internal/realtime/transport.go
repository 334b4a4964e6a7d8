package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// TransportConfig tunes the websocket connections.
type TransportConfig struct {
	ReadLimit      int64
	PongWait       time.Duration
	PingPeriod     time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	AllowedOrigins []string
}

func (c TransportConfig) withDefaults() TransportConfig {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 8192
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	return c
}

// Transport upgrades HTTP requests to websocket connections and runs them
// against the hub.
type Transport struct {
	hub      *Hub
	cfg      TransportConfig
	upgrader websocket.Upgrader
	log      zerolog.Logger
	wg       sync.WaitGroup
}

func NewTransport(hub *Hub, cfg TransportConfig, log zerolog.Logger) *Transport {
	cfg = cfg.withDefaults()
	t := &Transport{hub: hub, cfg: cfg, log: log}
	t.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return t
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeHTTP upgrades the request and blocks until the connection closes.
func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	conn := &wsConn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, t.cfg.SendBuffer),
		done: make(chan struct{}),
	}

	t.wg.Add(1)
	defer t.wg.Done()

	session := t.hub.Connect(conn)
	go conn.writePump(t.cfg, t.log)
	conn.readPump(context.WithoutCancel(r.Context()), session, t.cfg, t.log)
}

// Wait blocks until every connection served so far has finished.
func (t *Transport) Wait() {
	t.wg.Wait()
}

// wsConn is the websocket implementation of Conn. Writes go through the send
// queue and a single writer goroutine, as gorilla/websocket requires.
type wsConn struct {
	id        string
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *wsConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *wsConn) readPump(ctx context.Context, session *Session, cfg TransportConfig, log zerolog.Logger) {
	defer func() {
		session.Disconnect()
		c.Close()
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(cfg.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		kind, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("websocket read error")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		session.Handle(ctx, frame)
	}
}

func (c *wsConn) writePump(cfg TransportConfig, log zerolog.Logger) {
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("websocket write failed")
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(cfg.WriteWait))
			return
		}
	}
}
