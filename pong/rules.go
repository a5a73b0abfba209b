package pong

import "fmt"

// Variant 规则变体名称
type Variant string

const (
	// VariantClassic 反弹不加速、无旋转
	VariantClassic Variant = "classic"
	// VariantSpin 每次击球加速 10%，并根据击球点偏移附加旋转
	VariantSpin Variant = "spin"
)

// Rules 一局游戏的策略常量（长度单位为像素，速度单位为像素/Tick）
type Rules struct {
	PaddleWidth  float64
	PaddleHeight float64
	PaddleMargin float64 // 球拍与左右边界的距离
	BallRadius   float64
	BaseSpeedX   float64
	BaseSpeedY   float64
	AISpeed      float64 // AI 每 Tick 移动步长
	AIDeadZone   float64 // AI 中心与球的距离小于该值时不移动
	Restitution  float64 // 击球后水平速度倍率
	SpinFactor   float64 // 击球点偏移转化为垂直速度的系数
}

// DefaultRules 经典变体的默认规则
func DefaultRules() Rules {
	return Rules{
		PaddleWidth:  12,
		PaddleHeight: 80,
		PaddleMargin: 20,
		BallRadius:   10,
		BaseSpeedX:   4,
		BaseSpeedY:   4,
		AISpeed:      6,
		AIDeadZone:   35,
		Restitution:  1.0,
		SpinFactor:   0,
	}
}

// RulesFor 返回指定变体的默认规则
func RulesFor(v Variant) (Rules, error) {
	r := DefaultRules()
	switch v {
	case VariantClassic, "":
	case VariantSpin:
		r.Restitution = 1.1
		r.SpinFactor = 0.08
	default:
		return Rules{}, fmt.Errorf("unknown variant %q", v)
	}
	return r, nil
}
