package proctor

// MeanLuminance computes the mean per-pixel brightness of an RGBA frame
// on a 0-255 scale, averaging the three color channels. A value below
// the configured threshold is treated as a covered camera. This is a
// coarse occlusion heuristic, not presence detection: a dim room can
// false-positive and a photo held to the lens can false-negative.
func MeanLuminance(f Frame) float64 {
	n := f.Width * f.Height
	if n == 0 || len(f.Pixels) < n*4 {
		return 0
	}
	var sum float64
	for i := 0; i < n*4; i += 4 {
		r := float64(f.Pixels[i])
		g := float64(f.Pixels[i+1])
		b := float64(f.Pixels[i+2])
		sum += (r + g + b) / 3
	}
	return sum / float64(n)
}
