package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	models "WhaleWhisperer/internal/domain/models"
	xlogger "WhaleWhisperer/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the game client runs on a different origin in dev
	CheckOrigin: func(*http.Request) bool { return true },
}

// MarketWSHandler fans simulated ticks out to websocket subscribers.
// It sits at the end of the tick pipeline as its sink.
type MarketWSHandler struct {
	logger *xlogger.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewMarketWSHandler(logger *xlogger.Logger) *MarketWSHandler {
	return &MarketWSHandler{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *MarketWSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/market", h.Subscribe)
}

// Subscribe upgrades the connection and streams ticks until the peer
// goes away.
func (h *MarketWSHandler) Subscribe(c echo.Context) error {
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("market subscriber connected", xlogger.Int("total", total))

	go h.writePump(client)
	h.readPump(client)
	return nil
}

// Process implements the tick sink. Slow subscribers drop ticks
// rather than stall the pipeline.
func (h *MarketWSHandler) Process(_ context.Context, tick *models.Tick) error {
	payload, err := json.Marshal(tick)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
	return nil
}

func (h *MarketWSHandler) readPump(client *wsClient) {
	defer h.drop(client)
	client.conn.SetReadLimit(512)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *MarketWSHandler) writePump(client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(client)
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *MarketWSHandler) drop(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	_ = client.conn.Close()
}

// Close disconnects every subscriber.
func (h *MarketWSHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
		_ = client.conn.Close()
	}
}
