package pong

import (
	"math"
	"testing"
)

// fixedSource 总是返回同一个值：>0.5 得到正方向，否则负方向
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// newTestState 800x400 球场、经典规则、发球方向固定为 (+,+)
func newTestState(t *testing.T, rules Rules) *State {
	t.Helper()
	return NewState(Arena{Width: 800, Height: 400}, rules, fixedSource(0.9))
}

func TestNewStateCentersEverything(t *testing.T) {
	s := newTestState(t, DefaultRules())

	if s.Player.Y != 160 || s.AI.Y != 160 {
		t.Fatalf("paddles not centered: player=%.1f ai=%.1f", s.Player.Y, s.AI.Y)
	}
	if s.Player.X != 20 || s.AI.X != 768 {
		t.Fatalf("unexpected paddle columns: player=%.1f ai=%.1f", s.Player.X, s.AI.X)
	}
	if s.Ball.X != 400 || s.Ball.Y != 200 {
		t.Fatalf("ball not centered: (%.1f, %.1f)", s.Ball.X, s.Ball.Y)
	}
	if s.Ball.VX != 4 || s.Ball.VY != 4 {
		t.Fatalf("unexpected serve velocity: (%.1f, %.1f)", s.Ball.VX, s.Ball.VY)
	}
	if s.Score != (Score{}) {
		t.Fatalf("score not zero: %+v", s.Score)
	}
}

func TestPlayerPaddleReturnsBall(t *testing.T) {
	s := newTestState(t, DefaultRules())
	s.Player.Y = 160
	s.Ball.X, s.Ball.Y = 15, 200
	s.Ball.VX, s.Ball.VY = -5, 0

	cues := s.Advance()

	if s.Score.AI != 0 {
		t.Fatalf("ai scored on a returned ball: %d", s.Score.AI)
	}
	if s.Ball.VX != 5 {
		t.Fatalf("vx = %.2f, want 5", s.Ball.VX)
	}
	wantX := s.Player.X + s.Player.Width + s.Ball.Radius
	if s.Ball.X != wantX {
		t.Fatalf("ball x = %.2f, want %.2f (just right of paddle)", s.Ball.X, wantX)
	}
	if len(cues) != 1 || cues[0] != CuePaddle {
		t.Fatalf("cues = %v, want [paddle]", cues)
	}
}

func TestBallPastAIScoresForPlayer(t *testing.T) {
	s := newTestState(t, DefaultRules())
	s.AI.Y = 0
	s.Ball.X, s.Ball.Y = 798, 200
	s.Ball.VX, s.Ball.VY = 5, 0

	cues := s.Advance()

	if s.Score.Player != 1 || s.Score.AI != 0 {
		t.Fatalf("score = %+v, want player 1 ai 0", s.Score)
	}
	if s.Ball.X != 400 || s.Ball.Y != 200 {
		t.Fatalf("ball not reset to center: (%.1f, %.1f)", s.Ball.X, s.Ball.Y)
	}
	if cues[len(cues)-1] != CueGoal {
		t.Fatalf("cues = %v, want goal last", cues)
	}
}

func TestBallPastPlayerScoresForAI(t *testing.T) {
	s := newTestState(t, DefaultRules())
	s.Player.Y = 0
	s.Ball.X, s.Ball.Y = 12, 300
	s.Ball.VX, s.Ball.VY = -4, 0

	s.Advance()

	if s.Score.AI != 1 || s.Score.Player != 0 {
		t.Fatalf("score = %+v, want ai 1 player 0", s.Score)
	}
}

func TestCeilingBounceClampsToRadius(t *testing.T) {
	s := newTestState(t, DefaultRules())
	s.Ball.X, s.Ball.Y = 400, 2
	s.Ball.VX, s.Ball.VY = 0, -3

	cues := s.Advance()

	if s.Ball.VY != 3 {
		t.Fatalf("vy = %.1f, want 3", s.Ball.VY)
	}
	if s.Ball.Y != 10 {
		t.Fatalf("y = %.1f, want 10", s.Ball.Y)
	}
	if len(cues) != 1 || cues[0] != CueWall {
		t.Fatalf("cues = %v, want [wall]", cues)
	}
}

func TestFloorBounce(t *testing.T) {
	s := newTestState(t, DefaultRules())
	s.Ball.X, s.Ball.Y = 400, 395
	s.Ball.VX, s.Ball.VY = 0, 4

	s.Advance()

	if s.Ball.VY != -4 || s.Ball.Y != 390 {
		t.Fatalf("ball after floor bounce: y=%.1f vy=%.1f", s.Ball.Y, s.Ball.VY)
	}
}

func TestPaddleEdgeDoesNotCount(t *testing.T) {
	s := newTestState(t, DefaultRules())
	s.Player.Y = 160
	// 平移后球心恰好位于球拍上沿
	s.Ball.X, s.Ball.Y = 40, 160
	s.Ball.VX, s.Ball.VY = -5, 0

	cues := s.Advance()

	if s.Ball.VX != -5 {
		t.Fatalf("ball on paddle edge bounced: vx=%.1f", s.Ball.VX)
	}
	for _, c := range cues {
		if c == CuePaddle {
			t.Fatalf("unexpected paddle cue on edge contact")
		}
	}
}

func TestSpinVariantAddsSpeedAndSpin(t *testing.T) {
	rules, err := RulesFor(VariantSpin)
	if err != nil {
		t.Fatalf("RulesFor: %v", err)
	}
	s := newTestState(t, rules)
	s.Player.Y = 160 // 中心 200
	s.Ball.X, s.Ball.Y = 40, 230
	s.Ball.VX, s.Ball.VY = -10, 0

	s.Advance()

	if math.Abs(s.Ball.VX-11) > 1e-9 {
		t.Fatalf("vx = %.4f, want 11", s.Ball.VX)
	}
	if math.Abs(s.Ball.VY-0.08*30) > 1e-9 {
		t.Fatalf("vy = %.4f, want %.4f", s.Ball.VY, 0.08*30)
	}
}

func TestAIPaddleReturnsBall(t *testing.T) {
	s := newTestState(t, DefaultRules())
	s.AI.Y = 160
	s.Ball.X, s.Ball.Y = 755, 210
	s.Ball.VX, s.Ball.VY = 6, 0

	s.Advance()

	if s.Ball.VX != -6 {
		t.Fatalf("vx = %.1f, want -6", s.Ball.VX)
	}
	if s.Ball.X != s.AI.X-s.Ball.Radius {
		t.Fatalf("ball x = %.1f, want %.1f", s.Ball.X, s.AI.X-s.Ball.Radius)
	}
}

func TestResetBallUsesBaseSpeedBothDirections(t *testing.T) {
	cases := []struct {
		name   string
		src    fixedSource
		vx, vy float64
	}{
		{"positive", 0.9, 4, 4},
		{"negative", 0.1, -4, -4},
		{"half is negative", 0.5, -4, -4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState(Arena{Width: 800, Height: 400}, DefaultRules(), tc.src)
			s.Ball.VX, s.Ball.VY = 17, -9
			s.ResetBall()
			if s.Ball.VX != tc.vx || s.Ball.VY != tc.vy {
				t.Fatalf("velocity = (%.1f, %.1f), want (%.1f, %.1f)", s.Ball.VX, s.Ball.VY, tc.vx, tc.vy)
			}
		})
	}
}

func TestResetGameIsIdempotent(t *testing.T) {
	s := NewState(Arena{Width: 800, Height: 400}, DefaultRules(), NewRandom(7))
	for i := 0; i < 500; i++ {
		s.Advance()
	}
	s.MovePlayer(5)

	s.ResetGame()
	first := s.Snapshot()
	s.ResetGame()
	second := s.Snapshot()

	if first.PlayerScore != 0 || first.AIScore != 0 {
		t.Fatalf("scores not zeroed: %+v", first)
	}
	if first.PlayerY != second.PlayerY || first.AIY != second.AIY ||
		first.BallX != second.BallX || first.BallY != second.BallY {
		t.Fatalf("reset not idempotent:\n%+v\n%+v", first, second)
	}
	if math.Abs(s.Ball.VX) != 4 || math.Abs(s.Ball.VY) != 4 {
		t.Fatalf("velocity not at base speed: (%.1f, %.1f)", s.Ball.VX, s.Ball.VY)
	}
}

func TestInvariantsHoldOverLongRun(t *testing.T) {
	for _, variant := range []Variant{VariantClassic, VariantSpin} {
		t.Run(string(variant), func(t *testing.T) {
			rules, _ := RulesFor(variant)
			s := NewState(Arena{Width: 800, Height: 400}, rules, NewRandom(42))
			maxY := s.Arena.Height - rules.PaddleHeight
			for i := 0; i < 20000; i++ {
				// 玩家指针在球场外来回扫动
				s.MovePlayer(float64(i%700) - 150)
				prev := s.Score
				prevVX := s.Ball.VX
				s.Advance()

				if s.Player.Y < 0 || s.Player.Y > maxY || s.AI.Y < 0 || s.AI.Y > maxY {
					t.Fatalf("tick %d: paddle out of bounds player=%.2f ai=%.2f", i, s.Player.Y, s.AI.Y)
				}
				dp, da := s.Score.Player-prev.Player, s.Score.AI-prev.AI
				if dp < 0 || da < 0 || dp+da > 1 {
					t.Fatalf("tick %d: illegal score change %+v -> %+v", i, prev, s.Score)
				}
				if dp+da == 1 {
					if s.Ball.X != 400 || s.Ball.Y != 200 {
						t.Fatalf("tick %d: ball not centered after goal", i)
					}
					if math.Abs(s.Ball.VX) != rules.BaseSpeedX || math.Abs(s.Ball.VY) != rules.BaseSpeedY {
						t.Fatalf("tick %d: ball speed not reset", i)
					}
				} else if s.Ball.VX == 0 && prevVX != 0 {
					t.Fatalf("tick %d: vx collapsed to zero", i)
				}
			}
		})
	}
}

func TestRulesForUnknownVariant(t *testing.T) {
	if _, err := RulesFor("turbo"); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}
