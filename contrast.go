package pinlogo

// Contrast returns the pin body color for a logo drawn with fill.
// The candidate is the background of the logo, or the neutral color for cut-out logos
// without a panel. When both the fill and the candidate are light, the dark neutral is used instead.
func Contrast(fill RGB, model BackgroundModel, cfg ContrastConfig) RGB {
	candidate := model.Background.RGB
	if model.Method == Transparent && !model.Panel {
		candidate = cfg.Neutral
	}
	if fill.Luma() > cfg.LightThreshold && candidate.Luma() > cfg.LightThreshold {
		return cfg.Dark
	}
	return candidate
}
