package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity     float64 // 时间重力 (1.5)
	ScaleFactor float64 // 放大系数 (100)
}

var DefaultConfig = RankConfig{
	Gravity:     1.5,
	ScaleFactor: 100.0, // 让分数落在 0-100 区间，像"温度"
}

// PopularityScore ranks a rated item: the total of its stars, log-smoothed,
// decayed by age. Unrated items score 0.
func PopularityScore(createdAt time.Time, mean *float64, count int64, now time.Time) float64 {
	if mean == nil || count <= 0 {
		return 0
	}
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}

	// 1. 加权互动值: 星数总和
	weightedSum := *mean * float64(count)

	// 2. 对数平滑 (Log Smoothing)
	logScore := math.Log10(weightedSum + 1)

	// 3. 时间衰减 (分母)
	decay := math.Pow(hours+2, DefaultConfig.Gravity)

	return logScore * DefaultConfig.ScaleFactor / decay
}
