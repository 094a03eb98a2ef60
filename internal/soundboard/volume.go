package soundboard

// EffectiveVolume combines the listener's global volume with a sound's own
// volume. Both inputs are percentages and are clamped to [0, 100]; the result
// is the 0..1 gain an audio element expects.
func EffectiveVolume(global, perSound int) float64 {
	return float64(clampPercent(global)) / 100 * float64(clampPercent(perSound)) / 100
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
