package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"webpong/pong"
)

// ErrSessionClosed 会话循环已退出
var ErrSessionClosed = errors.New("session closed")

// SessionOptions 会话构造参数
type SessionOptions struct {
	Interval    time.Duration // 每 Tick 间隔
	Clock       Clock
	InQueueSize int
	Logger      *zap.SugaredLogger
	// OnEmpty 最后一个观众离开时在会话协程内回调
	OnEmpty func(id string)
}

// Session 一局游戏：权威状态维护在内存，由单一协程独占推进。
// 输入先入队，在 Tick/命令边界统一处理，保证对 Tick 而言是原子的
type Session struct {
	ID string

	game     *Game
	clock    Clock
	interval time.Duration
	ticker   Ticker
	log      *zap.SugaredLogger
	metrics  *SessionMetrics
	onEmpty  func(id string)

	viewers   map[ViewerID]Viewer
	inputChan chan Input
	leaveChan chan ViewerID
	requests  chan func()
	done      chan struct{}
}

// NewSession 创建会话，需调用 Run 开始循环
func NewSession(id string, game *Game, opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second / DefaultTicksPerSecond
	}
	if opts.InQueueSize <= 0 {
		opts.InQueueSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Session{
		ID:        id,
		game:      game,
		clock:     opts.Clock,
		interval:  opts.Interval,
		log:       opts.Logger.With("session", id),
		metrics:   &SessionMetrics{},
		onEmpty:   opts.OnEmpty,
		viewers:   make(map[ViewerID]Viewer),
		inputChan: make(chan Input, opts.InQueueSize),
		leaveChan: make(chan ViewerID, 64),
		requests:  make(chan func()),
		done:      make(chan struct{}),
	}
}

// Metrics 运行指标（原子计数，可跨协程读取）
func (s *Session) Metrics() *SessionMetrics { return s.metrics }

// Done 会话循环退出后关闭
func (s *Session) Done() <-chan struct{} { return s.done }

// Run 会话主循环，ctx 取消后退出并关闭所有观众连接
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer s.shutdown()

	s.arm()
	s.log.Infow("session started", "mode", s.game.Mode(), "phase", s.game.Phase().String())
	for {
		var tickC <-chan time.Time
		if s.ticker != nil {
			tickC = s.ticker.C()
		}
		select {
		case <-ctx.Done():
			return
		case <-tickC:
			s.tick()
		case fn := <-s.requests:
			fn()
		case id := <-s.leaveChan:
			s.removeViewer(id)
		}
	}
}

func (s *Session) shutdown() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	for id, v := range s.viewers {
		v.Close()
		delete(s.viewers, id)
	}
	s.log.Infow("session stopped", "ticks", s.game.Snapshot().Tick)
}

// submit 把函数投递到会话协程执行；会话已退出时返回 false
func (s *Session) submit(fn func()) bool {
	select {
	case s.requests <- fn:
		return true
	case <-s.done:
		return false
	}
}

// Do 执行生命周期命令并等待结果
func (s *Session) Do(cmd Command) error {
	errc := make(chan error, 1)
	if !s.submit(func() { errc <- s.apply(cmd) }) {
		return ErrSessionClosed
	}
	return <-errc
}

func (s *Session) apply(cmd Command) error {
	// 命令边界：先消化已排队的输入
	s.ProcessInputs()
	from := s.game.Phase()
	if err := s.game.Apply(cmd); err != nil {
		s.metrics.IncCommandsRejected()
		s.log.Warnw("command rejected", "command", cmd, "phase", from.String(), "error", err)
		return err
	}
	s.arm()
	s.log.Infow("lifecycle", "command", cmd, "from", from.String(), "to", s.game.Phase().String())
	if cmd == CmdReset {
		// 重置后立即渲染一次
		s.Broadcast()
	}
	return nil
}

// Snapshot 在会话协程内取当前快照
func (s *Session) Snapshot() (pong.Snapshot, error) {
	ch := make(chan pong.Snapshot, 1)
	if !s.submit(func() { ch <- s.game.Snapshot() }) {
		return pong.Snapshot{}, ErrSessionClosed
	}
	return <-ch, nil
}

// Join 加入观众并立即推送一帧当前状态
func (s *Session) Join(id ViewerID, v Viewer) error {
	errc := make(chan error, 1)
	if !s.submit(func() {
		s.viewers[id] = v
		v.Render(s.game.Snapshot())
		s.log.Infow("viewer joined", "viewer", id, "viewers", len(s.viewers))
		errc <- nil
	}) {
		return ErrSessionClosed
	}
	return <-errc
}

// RequestLeave 请求在会话协程中移除观众，避免并发改动会话状态
func (s *Session) RequestLeave(id ViewerID) {
	select {
	case s.leaveChan <- id:
	case <-s.done:
	}
}

func (s *Session) removeViewer(id ViewerID) {
	v, ok := s.viewers[id]
	if !ok {
		return
	}
	v.Close()
	delete(s.viewers, id)
	s.log.Infow("viewer left", "viewer", id, "viewers", len(s.viewers))
	if len(s.viewers) == 0 && s.onEmpty != nil {
		s.onEmpty(s.ID)
	}
}

// OnInput 入站指针输入（不立即改变位置），等下一次 Tick 或命令处理。
// 队列满时丢弃最旧的输入，保证最新指针位置总能入队
func (s *Session) OnInput(in Input) {
	for {
		select {
		case s.inputChan <- in:
			s.metrics.IncAccepted()
			return
		default:
		}
		select {
		case <-s.inputChan:
			s.metrics.IncChanFullDiscarded()
		default:
		}
	}
}

// ProcessInputs 非阻塞 drain，后到的指针位置覆盖先到的
func (s *Session) ProcessInputs() {
	for {
		select {
		case in := <-s.inputChan:
			s.game.MovePointer(in.Y)
		default:
			return
		}
	}
}

func (s *Session) playCues(cues []pong.Cue) {
	for _, c := range cues {
		s.metrics.AddCue(c)
		if c == pong.CueGoal {
			snap := s.game.Snapshot()
			s.log.Debugw("goal", "player", snap.PlayerScore, "ai", snap.AIScore, "tick", snap.Tick)
		}
		for _, v := range s.viewers {
			v.Play(c)
		}
	}
}

// Broadcast 将当前状态推送给所有观众
func (s *Session) Broadcast() {
	snap := s.game.Snapshot()
	for _, v := range s.viewers {
		v.Render(snap)
	}
}

// frameMessage 下行帧（文本 JSON）
type frameMessage struct {
	Type string `json:"type"`
	pong.Snapshot
}

type cueMessage struct {
	Type string `json:"type"`
	Cue  string `json:"cue"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

func encodeFrame(snap pong.Snapshot) []byte {
	b, _ := json.Marshal(frameMessage{Type: "frame", Snapshot: snap})
	return b
}

func encodeCue(c pong.Cue) []byte {
	b, _ := json.Marshal(cueMessage{Type: "cue", Cue: c.String()})
	return b
}
