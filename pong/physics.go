package pong

import "math"

// Cue 一个 Tick 内产生的音效事件（发出即忘）
type Cue int

const (
	CueWall Cue = iota + 1
	CuePaddle
	CueGoal
)

func (c Cue) String() string {
	switch c {
	case CueWall:
		return "wall"
	case CuePaddle:
		return "paddle"
	case CueGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// Advance 推进一个逻辑 Tick（固定步长，不做 dt 缩放），返回本 Tick 的音效事件
// 顺序：移动球 → 上下墙反弹 → 玩家球拍 → AI 球拍 → 计分 → AI 追踪
func (s *State) Advance() []Cue {
	var cues []Cue
	b := &s.Ball

	b.X += b.VX
	b.Y += b.VY

	if s.bounceWalls() {
		cues = append(cues, CueWall)
	}
	if s.hitPlayer() {
		cues = append(cues, CuePaddle)
	}
	if s.hitAI() {
		cues = append(cues, CuePaddle)
	}
	if s.score() {
		cues = append(cues, CueGoal)
	}
	s.trackAI()

	s.Tick++
	return cues
}

// bounceWalls 上下墙：位置裁剪到边界，垂直速度指向场内
func (s *State) bounceWalls() bool {
	b := &s.Ball
	switch {
	case b.Y-b.Radius < 0:
		b.Y = b.Radius
		b.VY = math.Abs(b.VY)
		return true
	case b.Y+b.Radius > s.Arena.Height:
		b.Y = s.Arena.Height - b.Radius
		b.VY = -math.Abs(b.VY)
		return true
	}
	return false
}

// withinPaddle 球心 y 严格位于球拍上下沿之间（恰好在边沿不算）
func withinPaddle(b *Ball, p Paddle) bool {
	return b.Y > p.Y && b.Y < p.Y+p.Height
}

// hitPlayer 包围盒检测（非圆-矩形精确检测），命中后把球推出球拍避免粘连
func (s *State) hitPlayer() bool {
	b, p := &s.Ball, s.Player
	if !(b.X-b.Radius < p.X+p.Width && withinPaddle(b, p)) {
		return false
	}
	b.X = p.X + p.Width + b.Radius
	b.VX = math.Abs(b.VX) * s.Rules.Restitution
	b.VY += s.Rules.SpinFactor * (b.Y - p.CenterY())
	return true
}

func (s *State) hitAI() bool {
	b, p := &s.Ball, s.AI
	if !(b.X+b.Radius > p.X && withinPaddle(b, p)) {
		return false
	}
	b.X = p.X - b.Radius
	b.VX = -math.Abs(b.VX) * s.Rules.Restitution
	b.VY += s.Rules.SpinFactor * (b.Y - p.CenterY())
	return true
}

// score 左右出界互斥：同一 Tick 最多一方得分
func (s *State) score() bool {
	b := &s.Ball
	switch {
	case b.X-b.Radius < 0:
		s.Score.AI++
	case b.X+b.Radius > s.Arena.Width:
		s.Score.Player++
	default:
		return false
	}
	s.ResetBall()
	return true
}
