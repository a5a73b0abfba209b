package pong

// Snapshot 渲染端每 Tick 读取的只读视图（JSON 直接下发给浏览器）
type Snapshot struct {
	Tick        uint64  `json:"tick"`
	Phase       string  `json:"phase,omitempty"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	PlayerX     float64 `json:"playerX"`
	PlayerY     float64 `json:"playerY"`
	AIX         float64 `json:"aiX"`
	AIY         float64 `json:"aiY"`
	PaddleW     float64 `json:"paddleWidth"`
	PaddleH     float64 `json:"paddleHeight"`
	BallX       float64 `json:"ballX"`
	BallY       float64 `json:"ballY"`
	BallRadius  float64 `json:"ballRadius"`
	PlayerScore int     `json:"playerScore"`
	AIScore     int     `json:"aiScore"`
}

// Snapshot 拷贝当前状态；Phase 由生命周期控制器填写
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Tick:        s.Tick,
		Width:       s.Arena.Width,
		Height:      s.Arena.Height,
		PlayerX:     s.Player.X,
		PlayerY:     s.Player.Y,
		AIX:         s.AI.X,
		AIY:         s.AI.Y,
		PaddleW:     s.Rules.PaddleWidth,
		PaddleH:     s.Rules.PaddleHeight,
		BallX:       s.Ball.X,
		BallY:       s.Ball.Y,
		BallRadius:  s.Ball.Radius,
		PlayerScore: s.Score.Player,
		AIScore:     s.Score.AI,
	}
}
