package pong

// trackAI 开关式控制：中心偏离球超过死区则按固定步长追，否则保持
func (s *State) trackAI() {
	ai := &s.AI
	center := ai.CenterY()
	switch {
	case center < s.Ball.Y-s.Rules.AIDeadZone:
		ai.Y += s.Rules.AISpeed
	case center > s.Ball.Y+s.Rules.AIDeadZone:
		ai.Y -= s.Rules.AISpeed
	}
	ai.clampY(s.Arena.Height)
}
