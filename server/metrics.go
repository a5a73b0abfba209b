package server

import (
	"sync/atomic"

	"webpong/pong"
)

// SessionMetrics 记录会话运行期的关键指标（用于监控与调试）
type SessionMetrics struct {
	TickCount         int64 // 实际推进的 Tick 次数
	InputsAccepted    int64 // 入队的指针输入数
	OldSeqIgnored     int64 // 因旧序列被忽略的输入数
	ChanFullDiscarded int64 // 因队列满被丢弃的最旧输入数
	CommandsRejected  int64 // 非法生命周期命令数
	FramesDropped     int64 // 观众发送队列满而丢弃的消息数
	WallBounces       int64
	PaddleHits        int64
	Goals             int64
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *SessionMetrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *SessionMetrics) IncOldSeqIgnored()     { atomic.AddInt64(&m.OldSeqIgnored, 1) }
func (m *SessionMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *SessionMetrics) IncCommandsRejected()  { atomic.AddInt64(&m.CommandsRejected, 1) }
func (m *SessionMetrics) IncFramesDropped()     { atomic.AddInt64(&m.FramesDropped, 1) }
func (m *SessionMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

func (m *SessionMetrics) AddCue(c pong.Cue) {
	switch c {
	case pong.CueWall:
		atomic.AddInt64(&m.WallBounces, 1)
	case pong.CuePaddle:
		atomic.AddInt64(&m.PaddleHits, 1)
	case pong.CueGoal:
		atomic.AddInt64(&m.Goals, 1)
	}
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *SessionMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"old_seq_ignored":     atomic.LoadInt64(&m.OldSeqIgnored),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"commands_rejected":   atomic.LoadInt64(&m.CommandsRejected),
		"frames_dropped":      atomic.LoadInt64(&m.FramesDropped),
		"wall_bounces":        atomic.LoadInt64(&m.WallBounces),
		"paddle_hits":         atomic.LoadInt64(&m.PaddleHits),
		"goals":               atomic.LoadInt64(&m.Goals),
		"avg_tick_ms":         avgMs,
	}
}
