package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub 按任务房间管理 WebSocket 连接。一个连接可以同时关注多个任务
// （多标签页、批量查询等场景）。
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
}

type Client struct {
	Conn *websocket.Conn
	mu   sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = make(map[string]struct{})
	log.Printf("WebSocket client connected, total: %d", len(h.clients))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.clients[client]
	if !ok {
		return
	}
	for room := range rooms {
		h.leaveLocked(client, room)
	}
	delete(h.clients, client)
	log.Printf("WebSocket client disconnected, total: %d", len(h.clients))
}

// Join 加入任务房间
func (h *Hub) Join(client *Client, jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	if h.rooms[jobID] == nil {
		h.rooms[jobID] = make(map[*Client]struct{})
	}
	h.rooms[jobID][client] = struct{}{}
	h.clients[client][jobID] = struct{}{}
}

// Leave 离开任务房间
func (h *Hub) Leave(client *Client, jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(client, jobID)
	if rooms, ok := h.clients[client]; ok {
		delete(rooms, jobID)
	}
}

func (h *Hub) leaveLocked(client *Client, jobID string) {
	if members, ok := h.rooms[jobID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, jobID)
		}
	}
}

// SendToRoom 向指定任务房间的所有连接发送消息
func (h *Hub) SendToRoom(jobID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	members, ok := h.rooms[jobID]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	// 复制一份引用，避免长时间持锁
	clients := make([]*Client, 0, len(members))
	for c := range members {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.Send(data); err != nil {
			log.Printf("SendToRoom write error for job %s: %v", jobID, err)
		}
	}
	return nil
}

// Send 序列化后的消息写入连接
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// SendJSON 向单个连接发送结构化消息
func (c *Client) SendJSON(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.Send(data)
}

// RoomSize 指定房间的连接数
func (h *Hub) RoomSize(jobID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[jobID])
}

// ConnectionCount 在线连接总数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
