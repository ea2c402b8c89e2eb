package webserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
)

// WebSocketメッセージ種別
const (
	MsgConnected   = "connected"
	MsgDrawFrame   = "draw_frame"
	MsgDrawStatus  = "draw_status"
	MsgDrawResult  = "draw_result"
	MsgPoolChanged = "pool_changed"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second

	// frame以外のメッセージがキューの空きを待つ上限
	broadcastWait = 2 * time.Second
)

// WSMessage はWebSocketメッセージの構造を定義
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type drawFramePayload struct {
	DrawID string       `json:"draw_id"`
	Frame  reveal.Frame `json:"frame"`
}

// WSClient はWebSocket接続クライアントを表す
type WSClient struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	clientID    string
	connectedAt time.Time
}

// Hub はすべてのWebSocket接続を管理。driver.Renderer としても動く。
type Hub struct {
	clients    map[*WSClient]bool
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan WSMessage
	done       chan struct{}
	mu         sync.RWMutex
}

var wsUpgrader = websocket.Upgrader{
	// オーバーレイはOBSのブラウザソースから接続されるため全オリジンを許可
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan WSMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()

			logger.Info("WebSocket client connected",
				zap.String("clientId", client.clientID),
				zap.Int("total_clients", total))

			if data, err := encodeMessage(MsgConnected, map[string]string{"clientId": client.clientID}); err == nil {
				select {
				case client.send <- data:
				default:
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				remaining := len(h.clients)
				h.mu.Unlock()

				logger.Info("WebSocket client disconnected",
					zap.String("clientId", client.clientID),
					zap.Int("remaining_clients", remaining))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				logger.Error("Failed to marshal WebSocket message", zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// バッファがフルのクライアントは切断
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast すべてのクライアントにメッセージを送信
func (h *Hub) Broadcast(msgType string, data any) {
	// draw_frameは頻繁すぎるのでログをスキップ
	if msgType != MsgDrawFrame {
		logger.Debug("Broadcast WebSocket message", zap.String("message_type", msgType))
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to marshal WebSocket broadcast data",
			zap.String("message_type", msgType), zap.Error(err))
		return
	}

	msg := WSMessage{Type: msgType, Data: jsonData}

	// フレームは次がすぐ来るので詰まっていたら捨てる
	if msgType == MsgDrawFrame {
		select {
		case h.broadcast <- msg:
		default:
			logger.Debug("WebSocket broadcast channel full, frame dropped")
		}
		return
	}

	timer := time.NewTimer(broadcastWait)
	defer timer.Stop()
	select {
	case h.broadcast <- msg:
	case <-h.done:
		logger.Warn("WebSocket hub stopped, message dropped", zap.String("message_type", msgType))
	case <-timer.C:
		logger.Warn("WebSocket broadcast channel full, message dropped", zap.String("message_type", msgType))
	}
}

// RenderFrame pushes one animation frame to every client.
func (h *Hub) RenderFrame(drawID string, frame reveal.Frame) {
	h.Broadcast(MsgDrawFrame, drawFramePayload{DrawID: drawID, Frame: frame})
}

// ServeWS WebSocket接続を処理
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = generateClientID()
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	client := &WSClient{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, 256),
		clientID:    clientID,
		connectedAt: time.Now(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *WSClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		// クライアントからのメッセージは使わない
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encodeMessage(msgType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: msgType, Data: raw})
}

// generateClientID クライアントIDを生成
func generateClientID() string {
	id, err := gonanoid.New(12)
	if err != nil {
		return "ws-" + time.Now().Format("150405.000000")
	}
	return "ws-" + id
}
