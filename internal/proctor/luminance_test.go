package proctor

import "testing"

func solidFrame(w, h int, r, g, b byte) Frame {
	pixels := make([]byte, w*h*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i] = r
		pixels[i+1] = g
		pixels[i+2] = b
		pixels[i+3] = 255
	}
	return Frame{Width: w, Height: h, Pixels: pixels}
}

func TestMeanLuminance(t *testing.T) {
	cases := []struct {
		name  string
		frame Frame
		want  float64
	}{
		{"Black", solidFrame(4, 4, 0, 0, 0), 0},
		{"White", solidFrame(4, 4, 255, 255, 255), 255},
		{"MidGray", solidFrame(4, 4, 128, 128, 128), 128},
		{"ChannelAverage", solidFrame(2, 2, 30, 60, 90), 60},
		{"EmptyFrame", Frame{}, 0},
		{"TruncatedPixels", Frame{Width: 4, Height: 4, Pixels: make([]byte, 8)}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MeanLuminance(tc.frame)
			if got != tc.want {
				t.Errorf("MeanLuminance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMeanLuminanceAlphaIgnored(t *testing.T) {
	f := solidFrame(2, 2, 100, 100, 100)
	for i := 3; i < len(f.Pixels); i += 4 {
		f.Pixels[i] = 0
	}
	if got := MeanLuminance(f); got != 100 {
		t.Errorf("MeanLuminance = %v, want 100 regardless of alpha", got)
	}
}
