package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity        float64 // 时间重力
	WeightReaction float64
	WeightComment  float64
	WeightUpvote   float64
	WeightDownvote float64
	ScaleFactor    float64 // 放大系数
}

var DefaultConfig = RankConfig{
	Gravity:        1.5,
	WeightReaction: 1.0,
	WeightComment:  2.0,
	WeightUpvote:   1.0,
	WeightDownvote: 1.5,
	ScaleFactor:    100.0, // 让分数落在 0-100 区间
}

// CalculateScore ranks a post by weighted engagement decayed by age at now.
func CalculateScore(created, now time.Time, up, down, reactions, comments int) float64 {
	hours := now.Sub(created).Hours()
	if hours < 0 {
		hours = 0
	}

	weightedSum := (float64(up) * DefaultConfig.WeightUpvote) +
		(float64(comments) * DefaultConfig.WeightComment) +
		(float64(reactions) * DefaultConfig.WeightReaction) -
		(float64(down) * DefaultConfig.WeightDownvote)

	if weightedSum < 0 {
		weightedSum = 0 // 防止负数无法取对数
	}

	// log10(sum + 1) -> sum=0 时结果为 0
	logScore := math.Log10(weightedSum + 1)

	numerator := logScore * DefaultConfig.ScaleFactor
	decay := math.Pow(hours+2, DefaultConfig.Gravity)

	return numerator / decay
}
