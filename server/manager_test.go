package server

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"webpong/config"
)

func newTestManager(t *testing.T, mutate func(*config.Config)) (*Manager, *manualClock) {
	t.Helper()
	cfg := config.Default()
	cfg.Game.Seed = 99
	if mutate != nil {
		mutate(cfg)
	}
	clock := &manualClock{}
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx, cfg, clock, zaptest.NewLogger(t).Sugar())
	t.Cleanup(func() {
		cancel()
		m.Wait()
	})
	return m, clock
}

func TestManagerReusesSession(t *testing.T) {
	m, _ := newTestManager(t, nil)

	a := m.GetOrCreate("alpha")
	b := m.GetOrCreate("alpha")
	if a != b {
		t.Fatalf("GetOrCreate returned different sessions for the same id")
	}
	if _, ok := m.Get("beta"); ok {
		t.Fatalf("unexpected session beta")
	}
	m.GetOrCreate("beta")
	ids := []string{}
	for _, s := range m.Sessions() {
		ids = append(ids, s.ID)
	}
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Fatalf("sessions = %v", ids)
	}
}

func TestManagerRemovesEmptySession(t *testing.T) {
	m, _ := newTestManager(t, nil)
	v := newRecordingViewer()

	s, err := m.Join("gamma", "v1", v)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	s.RequestLeave("v1")

	select {
	case <-s.Done():
	case <-time.After(waitTimeout):
		t.Fatalf("empty session kept running")
	}
	if _, ok := m.Get("gamma"); ok {
		t.Fatalf("empty session still registered")
	}

	// 同 ID 再次加入会得到一局新游戏
	s2, err := m.Join("gamma", "v2", newRecordingViewer())
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if s2 == s {
		t.Fatalf("rejoin reused a stopped session")
	}
}

func TestManagerUsesGameConfig(t *testing.T) {
	m, clock := newTestManager(t, func(c *config.Config) {
		c.Game.Mode = config.ModeContinuous
		c.Game.Width = 640
		c.Game.Height = 480
	})
	v := newRecordingViewer()
	if _, err := m.Join("delta", "v1", v); err != nil {
		t.Fatalf("Join: %v", err)
	}
	first := v.nextFrame(t)
	if first.Width != 640 || first.Height != 480 || first.Phase != "running" {
		t.Fatalf("unexpected initial frame: %+v", first)
	}
	if !clock.Fire() {
		t.Fatalf("continuous session not ticking")
	}
	if f := v.nextFrame(t); f.Tick != 1 {
		t.Fatalf("tick = %d, want 1", f.Tick)
	}
}

func TestSessionSeedIsStablePerID(t *testing.T) {
	if sessionSeed(0, "a") != 0 {
		t.Fatalf("zero root seed must stay time based")
	}
	if sessionSeed(5, "a") != sessionSeed(5, "a") {
		t.Fatalf("seed not deterministic")
	}
	if sessionSeed(5, "a") == sessionSeed(5, "b") {
		t.Fatalf("sessions share a seed")
	}
}
