package server

import "time"

// DefaultTicksPerSecond 参考节奏（60 TPS）
const DefaultTicksPerSecond = 60

// Ticker 周期触发源
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock 可注入的时钟，测试中用手动时钟逐 Tick 推进，无需真实等待
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// SystemClock 基于 time.Ticker 的真实时钟
type SystemClock struct{}

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// arm 根据阶段启停周期触发：仅运行阶段持有 Ticker
func (s *Session) arm() {
	running := s.game.Phase() == PhaseRunning
	switch {
	case running && s.ticker == nil:
		s.ticker = s.clock.NewTicker(s.interval)
	case !running && s.ticker != nil:
		s.ticker.Stop()
		s.ticker = nil
	}
}

// tick 核心循环：处理输入 → 推进世界 → 音效 → 广播结果
func (s *Session) tick() {
	start := time.Now()
	s.ProcessInputs()
	cues, advanced := s.game.Tick()
	if !advanced {
		return
	}
	s.metrics.AddTick(time.Since(start).Nanoseconds())
	s.playCues(cues)
	s.Broadcast()
}
