package scripting

// DefaultVolley is the built-in pattern set per complexity tier, used when
// no script is loaded or the script fails. Higher tiers fire more patterns
// at once.
func DefaultVolley(tier int) []PatternCommand {
	switch {
	case tier <= 1:
		return []PatternCommand{
			{Pattern: "aimed", Count: 1, Speed: 160},
		}
	case tier == 2:
		return []PatternCommand{
			{Pattern: "aimed", Count: 3, Spread: 30, Speed: 170},
			{Pattern: "radial", Count: 6, Speed: 120},
		}
	case tier == 3:
		return []PatternCommand{
			{Pattern: "spiral", Arms: 4, Speed: 150},
			{Pattern: "aimed", Count: 3, Spread: 24, Speed: 190},
			{Pattern: "wave", Count: 7, Speed: 140, Amplitude: 25},
		}
	default:
		return []PatternCommand{
			{Pattern: "spiral", Arms: 6, Speed: 160},
			{Pattern: "ring", Count: 12, Radius: 20, Speed: 130},
			{Pattern: "burst", Count: 6, Spread: 40, MinSpeed: 150, MaxSpeed: 240},
			{Pattern: "cross", Speed: 200},
		}
	}
}

// DefaultSpin is the rotation speed in radians per second for a tier.
func DefaultSpin(tier int) float64 {
	return 0.6 + 0.3*float64(min(max(tier, 1), 4))
}
