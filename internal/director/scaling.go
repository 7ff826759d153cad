package director

import (
	"math"
	"time"

	"github.com/cipherstorm/director/internal/config"
)

// Milestone marks a reinforced single-enemy wave.
type Milestone uint8

const (
	Regular Milestone = iota
	MiniBoss
	Boss
)

func (m Milestone) String() string {
	switch m {
	case MiniBoss:
		return "miniboss"
	case Boss:
		return "boss"
	}
	return ""
}

// Cap is the enemy-count ceiling of the tier wave falls in.
func Cap(wave int, cfg config.WavesConfig) int {
	for i, th := range cfg.CapThresholds {
		if wave < th {
			return cfg.Caps[i]
		}
	}
	return cfg.Caps[len(cfg.Caps)-1]
}

// EnemyCount is floor(base·growth^(wave−1)) limited by Cap.
func EnemyCount(wave int, cfg config.WavesConfig) int {
	if wave < 1 {
		wave = 1
	}
	c := Cap(wave, cfg)
	raw := math.Floor(float64(cfg.BaseCount) * math.Pow(cfg.Growth, float64(wave-1)))
	if raw >= float64(c) {
		return c
	}
	return int(raw)
}

// ScaledCount applies the threat multiplier to the growth above the base
// count only, so wave 1 always has exactly BaseCount enemies.
func ScaledCount(wave int, mult float64, cfg config.WavesConfig) int {
	raw := EnemyCount(wave, cfg)
	base := cfg.BaseCount
	n := int(math.Floor(float64(base) + float64(raw-base)*mult))
	return max(1, min(n, Cap(wave, cfg)))
}

// FireInterval shortens by a fixed step per wave down to the floor.
func FireInterval(wave int, cfg config.WavesConfig) time.Duration {
	d := cfg.FireIntervalStart - time.Duration(wave-1)*cfg.FireIntervalStep
	return max(d, cfg.FireIntervalFloor)
}

// Complexity is the pattern tier, 1 through 4.
func Complexity(wave int, cfg config.WavesConfig) int {
	tier := 1
	for _, w := range cfg.ComplexityWaves {
		if wave >= w {
			tier++
		}
	}
	return tier
}

// TimeLimit grows with the number of enemies up to the configured maximum.
func TimeLimit(count int, cfg config.WavesConfig) time.Duration {
	return min(cfg.BaseTimeLimit+time.Duration(count)*cfg.TimePerEnemy, cfg.MaxTimeLimit)
}

// InterWaveDelay is the pause that follows wave.
func InterWaveDelay(wave int, cfg config.WavesConfig) time.Duration {
	d := cfg.InterWaveDelay - time.Duration(wave)*cfg.InterWaveShrink
	return max(d, cfg.InterWaveFloor)
}

// MilestoneFor reports whether wave is a boss or mini-boss wave. Boss wins
// when both intervals divide the wave.
func MilestoneFor(wave int, cfg config.WavesConfig) Milestone {
	switch {
	case wave > 0 && wave%cfg.BossEvery == 0:
		return Boss
	case wave > 0 && wave%cfg.MiniBossEvery == 0:
		return MiniBoss
	}
	return Regular
}

// HealAmount is the completion heal for wave.
func HealAmount(wave int, cfg config.WavesConfig) int {
	for i, th := range cfg.HealThresholds {
		if wave < th {
			return cfg.Heals[i]
		}
	}
	return cfg.Heals[len(cfg.Heals)-1]
}

// ScoreBonus is the completion score for wave.
func ScoreBonus(wave int, cfg config.WavesConfig) int {
	return cfg.ScorePerWave * wave
}

// GrantsLife reports whether completing wave awards an extra life.
func GrantsLife(wave int, cfg config.WavesConfig) bool {
	return wave > 0 && wave%cfg.ExtraLifeEvery == 0
}

// HealthScale is the per-wave enemy health factor.
func HealthScale(wave int, cfg config.WavesConfig) float64 {
	return 1 + cfg.HealthGrowth*float64(wave-1)
}
