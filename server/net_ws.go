package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"webpong/config"
	"webpong/pong"
)

// ClientConn 负责发送（写）数据到浏览器的轻量包装，同时实现 Viewer
type ClientConn struct {
	ws      *websocket.Conn
	net     config.NetworkConfig
	metrics *SessionMetrics

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn, net config.NetworkConfig) *ClientConn {
	return &ClientConn{
		ws:   ws,
		net:  net,
		send: make(chan []byte, net.OutQueueSize),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性丢弃本帧（防止阻塞 Tick）
		if c.metrics != nil {
			c.metrics.IncFramesDropped()
		}
	}
}

func (c *ClientConn) Render(snap pong.Snapshot) { c.Enqueue(encodeFrame(snap)) }

func (c *ClientConn) Play(cue pong.Cue) { c.Enqueue(encodeCue(cue)) }

// Close 关闭发送队列，写协程随之结束并关闭底层连接
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(c.net.WriteTimeout))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// readPump 读取浏览器输入：指针位置入队，生命周期命令同步执行
func (c *ClientConn) readPump(s *Session, viewerID ViewerID) {
	defer c.ws.Close()
	// 读泵退出时，通知会话在其协程中移除该观众
	defer s.RequestLeave(viewerID)
	c.ws.SetReadLimit(c.net.ReadLimit)
	c.ws.SetReadDeadline(time.Now().Add(c.net.ReadTimeout))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(c.net.ReadTimeout)); return nil })

	var lastSeq int64
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(c.net.ReadTimeout))
		var im InputMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			continue
		}
		switch strings.ToLower(im.Type) {
		case "pointer":
			if im.Seq != 0 {
				if im.Seq <= lastSeq {
					s.metrics.IncOldSeqIgnored()
					continue
				}
				lastSeq = im.Seq
			}
			s.OnInput(Input{ViewerID: viewerID, Y: im.Y, Seq: im.Seq})
		case "command":
			cmd, err := ParseCommand(im.Command)
			if err == nil {
				err = s.Do(cmd)
			}
			if errors.Is(err, ErrSessionClosed) {
				return
			}
			var reply any = ackMessage{Type: "ack", Command: string(cmd)}
			if err != nil {
				reply = errorMessage{Type: "error", Command: im.Command, Error: err.Error()}
			}
			b, _ := json.Marshal(reply)
			c.Enqueue(b)
		}
	}
}

type ackMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

type helloMessage struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Viewer  string `json:"viewer"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?session=abc（缺省时为本连接新建一局）
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = h.manager.NewSessionID()
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("upgrade error", "error", err)
		return
	}

	client := NewClientConn(ws, h.cfg.Network)
	viewerID := ViewerID(fmt.Sprintf("v-%d", h.viewerSeq.Add(1)))
	go client.writePump()

	s, err := h.manager.Join(sessionID, viewerID, client)
	if err != nil {
		h.log.Errorw("join failed", "session", sessionID, "error", err)
		client.Close()
		return
	}
	client.mu.Lock()
	client.metrics = s.Metrics()
	client.mu.Unlock()
	b, _ := json.Marshal(helloMessage{Type: "hello", Session: s.ID, Viewer: string(viewerID)})
	client.Enqueue(b)

	go client.readPump(s, viewerID)
}
