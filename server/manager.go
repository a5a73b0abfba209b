package server

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"webpong/config"
	"webpong/pong"
)

// Manager 管理多个会话的生命周期；每个浏览器标签页对应一局独立的游戏
type Manager struct {
	ctx   context.Context
	cfg   config.GameConfig
	net   config.NetworkConfig
	clock Clock
	log   *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*managed
	seq      atomic.Uint64
	wg       sync.WaitGroup
}

type managed struct {
	session *Session
	cancel  context.CancelFunc
}

// NewManager 会话随 ctx 取消而退出
func NewManager(ctx context.Context, cfg *config.Config, clock Clock, log *zap.SugaredLogger) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Manager{
		ctx:      ctx,
		cfg:      cfg.Game,
		net:      cfg.Network,
		clock:    clock,
		log:      log,
		sessions: make(map[string]*managed),
	}
}

// NewSessionID 生成进程内唯一的会话 ID
func (m *Manager) NewSessionID() string {
	return fmt.Sprintf("s-%d", m.seq.Add(1))
}

// GetOrCreate 获取或创建会话，并确保循环已启动
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms, ok := m.sessions[id]; ok {
		return ms.session
	}

	state := pong.NewState(m.cfg.Arena(), m.cfg.Rules(), pong.NewRandom(sessionSeed(m.cfg.Seed, id)))
	ctx, cancel := context.WithCancel(m.ctx)
	var s *Session
	s = NewSession(id, NewGame(state, m.cfg.Mode), SessionOptions{
		Interval:    m.cfg.TickInterval(),
		Clock:       m.clock,
		InQueueSize: m.net.InQueueSize,
		Logger:      m.log,
		OnEmpty:     func(string) { m.remove(id, s) },
	})
	m.sessions[id] = &managed{session: s, cancel: cancel}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		s.Run(ctx)
	}()
	m.log.Infow("session created", "session", id, "variant", m.cfg.Variant)
	return s
}

// Get 查找已有会话
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return ms.session, true
}

// Join 把观众加入会话；若会话恰好因清空而退出，则重建一次
func (m *Manager) Join(id string, viewerID ViewerID, v Viewer) (*Session, error) {
	for attempt := 0; attempt < 2; attempt++ {
		s := m.GetOrCreate(id)
		err := s.Join(viewerID, v)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrSessionClosed) {
			return nil, err
		}
		m.remove(id, s)
	}
	return nil, fmt.Errorf("join session %s: %w", id, ErrSessionClosed)
}

// Sessions 按 ID 排序返回当前会话
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, ms := range m.sessions {
		out = append(out, ms.session)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Wait 等待所有会话循环退出
func (m *Manager) Wait() { m.wg.Wait() }

// remove 只移除仍是同一实例的会话，并取消其循环
func (m *Manager) remove(id string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok || ms.session != s {
		return
	}
	ms.cancel()
	delete(m.sessions, id)
	m.log.Infow("session removed", "session", id)
}

// sessionSeed 固定根种子时按会话 ID 派生，保证可复现且各会话不同
func sessionSeed(root int64, id string) int64 {
	if root == 0 {
		return 0
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", root)
	h.Write([]byte{0})
	h.Write([]byte(id))
	sum := int64(h.Sum64())
	if sum == 0 {
		sum = 1
	}
	return sum
}
