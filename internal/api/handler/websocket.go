package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/qs3c/aiseo_go_server/internal/pkg/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境需要验证 Origin
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// clientMessage 客户端控制消息：关注 / 取消关注某个任务
type clientMessage struct {
	Action string `json:"action"` // join_query, leave_query
	JobID  string `json:"job_id"`
}

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Handle WebSocket 连接处理
// GET /api/v1/ws
func (h *WebSocketHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &ws.Client{Conn: conn}
	h.hub.Register(client)

	if err := client.SendJSON(ws.Message{Type: "connected"}); err != nil {
		h.hub.Unregister(client)
		conn.Close()
		return
	}

	go h.readLoop(client, conn)
}

// readLoop 读取控制消息，同时兼做断线检测
func (h *WebSocketHandler) readLoop(client *ws.Client, conn *websocket.Conn) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.JobID == "" {
			continue
		}

		switch msg.Action {
		case "join_query":
			h.hub.Join(client, msg.JobID)
			if err := client.SendJSON(ws.Message{Type: "joined", Data: gin.H{"job_id": msg.JobID}}); err != nil {
				return
			}
		case "leave_query":
			h.hub.Leave(client, msg.JobID)
		}
	}
}
