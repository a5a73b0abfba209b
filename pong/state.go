package pong

// Arena 球场尺寸，构造后不可变
type Arena struct {
	Width  float64
	Height float64
}

// Center 球场中心点
func (a Arena) Center() (float64, float64) {
	return a.Width / 2, a.Height / 2
}

// Paddle 球拍（左上角坐标系），X 固定，Y 每 Tick 后都被裁剪到 [0, H-Height]
type Paddle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// CenterY 球拍垂直中心
func (p Paddle) CenterY() float64 { return p.Y + p.Height/2 }

// clampY 把球拍限制在球场内
func (p *Paddle) clampY(arenaHeight float64) {
	p.Y = clamp(p.Y, 0, arenaHeight-p.Height)
}

// Ball 球：中心坐标与每 Tick 速度
type Ball struct {
	X      float64
	Y      float64
	VX     float64
	VY     float64
	Radius float64
}

// Score 双方得分，仅在整局重置时清零
type Score struct {
	Player int
	AI     int
}

// State 模拟的权威状态（单一聚合，不使用包级全局变量）
type State struct {
	Arena  Arena
	Rules  Rules
	Player Paddle
	AI     Paddle
	Ball   Ball
	Score  Score
	Tick   uint64

	rng RandomSource
}

// NewState 按规则创建状态，并执行一次整局重置（球拍居中、比分 0:0）
func NewState(arena Arena, rules Rules, rng RandomSource) *State {
	if rng == nil {
		rng = NewRandom(0)
	}
	s := &State{
		Arena: arena,
		Rules: rules,
		Player: Paddle{
			X:      rules.PaddleMargin,
			Width:  rules.PaddleWidth,
			Height: rules.PaddleHeight,
		},
		AI: Paddle{
			X:      arena.Width - rules.PaddleMargin - rules.PaddleWidth,
			Width:  rules.PaddleWidth,
			Height: rules.PaddleHeight,
		},
		Ball: Ball{Radius: rules.BallRadius},
		rng:  rng,
	}
	s.ResetGame()
	return s
}

// ResetBall 球回到中心，速度恢复为基础速度，方向随机
func (s *State) ResetBall() {
	s.Ball.X, s.Ball.Y = s.Arena.Center()
	s.Ball.VX = s.Rules.BaseSpeedX * randomSign(s.rng)
	s.Ball.VY = s.Rules.BaseSpeedY * randomSign(s.rng)
}

// ResetGame 清零比分、球拍居中并重置球
func (s *State) ResetGame() {
	s.Score = Score{}
	centered := s.Arena.Height/2 - s.Rules.PaddleHeight/2
	s.Player.Y = centered
	s.AI.Y = centered
	s.ResetBall()
}

// MovePlayer 指针输入：玩家球拍中心对准指针并裁剪
func (s *State) MovePlayer(pointerY float64) {
	s.Player.Y = pointerY - s.Player.Height/2
	s.Player.clampY(s.Arena.Height)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
