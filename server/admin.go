package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"webpong/config"
)

// Handlers 汇总 HTTP 接口依赖
type Handlers struct {
	cfg       *config.Config
	manager   *Manager
	log       *zap.SugaredLogger
	viewerSeq atomic.Uint64
}

func NewHandlers(cfg *config.Config, manager *Manager, log *zap.SugaredLogger) *Handlers {
	return &Handlers{cfg: cfg, manager: manager, log: log}
}

// Routes 注册全部路由
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	// 前后端分离：将 / 映射到静态资源目录
	mux.Handle("/", http.FileServer(http.Dir(h.cfg.Server.StaticDir)))
	// 管理与监控接口
	mux.HandleFunc("/admin/config", h.HandleAdminConfig)
	mux.HandleFunc("/admin/session", h.HandleSession)
	mux.HandleFunc("/metrics", h.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 只读：返回当前生效的游戏配置
// GET /admin/config
func (h *Handlers) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g := h.cfg.Game
	rules := g.Rules()
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":         g.Mode,
		"variant":      g.Variant,
		"tickRate":     g.TickRate,
		"width":        g.Width,
		"height":       g.Height,
		"paddleWidth":  rules.PaddleWidth,
		"paddleHeight": rules.PaddleHeight,
		"ballRadius":   rules.BallRadius,
		"baseSpeedX":   rules.BaseSpeedX,
		"baseSpeedY":   rules.BaseSpeedY,
		"aiSpeed":      rules.AISpeed,
		"aiDeadZone":   rules.AIDeadZone,
		"restitution":  rules.Restitution,
		"spinFactor":   rules.SpinFactor,
	})
}

// HandleSession 会话快照与生命周期命令
// GET  /admin/session?session=s-1                 返回当前快照
// POST /admin/session?session=s-1&command=pause   执行命令
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	s, ok := h.manager.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		snap, err := s.Snapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusGone)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	case http.MethodPost:
		cmd, err := ParseCommand(r.URL.Query().Get("command"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = s.Do(cmd)
		switch {
		case err == nil:
			snap, _ := s.Snapshot()
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "phase": snap.Phase})
		case errors.Is(err, ErrSessionClosed):
			http.Error(w, err.Error(), http.StatusGone)
		default:
			writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": err.Error()})
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出会话运行指标；不带 session 参数时输出全部
// GET /metrics?session=s-1
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("session"); id != "" {
		s, ok := h.manager.Get(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, sessionMetrics(s))
		return
	}
	all := make([]map[string]any, 0)
	for _, s := range h.manager.Sessions() {
		all = append(all, sessionMetrics(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": all})
}

func sessionMetrics(s *Session) map[string]any {
	out := map[string]any{
		"session": s.ID,
		"metrics": s.Metrics().Snapshot(),
	}
	if snap, err := s.Snapshot(); err == nil {
		out["tick"] = snap.Tick
		out["phase"] = snap.Phase
	}
	return out
}
