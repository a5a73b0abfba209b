package pong

import (
	"math/rand"
	"time"
)

// RandomSource 发球方向的随机来源；*rand.Rand 直接满足该接口
type RandomSource interface {
	Float64() float64
}

// NewRandom 返回带种子的随机源，seed 为 0 时使用当前时间
func NewRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func randomSign(rng RandomSource) float64 {
	if rng.Float64() > 0.5 {
		return 1
	}
	return -1
}
