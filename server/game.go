package server

import (
	"errors"
	"fmt"
	"strings"

	"webpong/config"
	"webpong/pong"
)

var (
	// ErrInvalidTransition 当前阶段不允许该命令
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	// ErrUnsupportedInMode 连续模式下没有暂停/重置控制
	ErrUnsupportedInMode = errors.New("command not supported in continuous mode")
	// ErrUnknownCommand 无法识别的命令
	ErrUnknownCommand = errors.New("unknown command")
)

// Phase 生命周期阶段
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseRunning
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "stopped"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Command 外部 UI 发来的生命周期命令
type Command string

const (
	CmdStart  Command = "start"
	CmdPause  Command = "pause"
	CmdResume Command = "resume"
	CmdToggle Command = "toggle"
	CmdReset  Command = "reset"
)

// ParseCommand 大小写不敏感
func ParseCommand(s string) (Command, error) {
	switch c := Command(strings.ToLower(strings.TrimSpace(s))); c {
	case CmdStart, CmdPause, CmdResume, CmdToggle, CmdReset:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}

// Game 控制器：持有模拟状态与生命周期阶段，本身不做并发保护，
// 由 Session 的单一协程独占调用
type Game struct {
	state *pong.State
	phase Phase
	mode  config.Mode
}

// NewGame 连续模式下直接进入运行阶段
func NewGame(state *pong.State, mode config.Mode) *Game {
	g := &Game{state: state, mode: mode}
	if mode == config.ModeContinuous {
		g.phase = PhaseRunning
	}
	return g
}

func (g *Game) Phase() Phase { return g.phase }

func (g *Game) Mode() config.Mode { return g.mode }

// State 返回底层状态（仅供测试与同协程调用方使用）
func (g *Game) State() *pong.State { return g.state }

func (g *Game) transition(cmd Command, from, to Phase) error {
	if g.phase != from {
		return fmt.Errorf("%s from %s: %w", cmd, g.phase, ErrInvalidTransition)
	}
	g.phase = to
	return nil
}

func (g *Game) Start() error {
	return g.transition(CmdStart, PhaseStopped, PhaseRunning)
}

func (g *Game) Pause() error {
	if g.mode == config.ModeContinuous {
		return fmt.Errorf("%s: %w", CmdPause, ErrUnsupportedInMode)
	}
	return g.transition(CmdPause, PhaseRunning, PhasePaused)
}

func (g *Game) Resume() error {
	if g.mode == config.ModeContinuous {
		return fmt.Errorf("%s: %w", CmdResume, ErrUnsupportedInMode)
	}
	return g.transition(CmdResume, PhasePaused, PhaseRunning)
}

// TogglePause 运行↔暂停；停止阶段无效
func (g *Game) TogglePause() error {
	if g.phase == PhasePaused {
		return g.Resume()
	}
	return g.Pause()
}

// Reset 任意阶段可用：整局重置并回到停止阶段
func (g *Game) Reset() error {
	if g.mode == config.ModeContinuous {
		return fmt.Errorf("%s: %w", CmdReset, ErrUnsupportedInMode)
	}
	g.state.ResetGame()
	g.phase = PhaseStopped
	return nil
}

// Apply 按命令分派
func (g *Game) Apply(cmd Command) error {
	switch cmd {
	case CmdStart:
		return g.Start()
	case CmdPause:
		return g.Pause()
	case CmdResume:
		return g.Resume()
	case CmdToggle:
		return g.TogglePause()
	case CmdReset:
		return g.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

// Tick 仅在运行阶段推进一步；返回本 Tick 的音效事件与是否推进
func (g *Game) Tick() ([]pong.Cue, bool) {
	if g.phase != PhaseRunning {
		return nil, false
	}
	return g.state.Advance(), true
}

// MovePointer 任意阶段都可移动玩家球拍
func (g *Game) MovePointer(y float64) {
	g.state.MovePlayer(y)
}

func (g *Game) Snapshot() pong.Snapshot {
	snap := g.state.Snapshot()
	snap.Phase = g.phase.String()
	return snap
}
