package colorspace

import (
	"math"
	"testing"
)

func TestRGBToLab(t *testing.T) {
	tests := []struct {
		name                string
		rgb                 [3]uint8
		wantL, wantA, wantB float64
		tolerance           float64
	}{
		{
			name: "black",
			rgb:  [3]uint8{0, 0, 0},
			wantL: 0, wantA: 0, wantB: 0,
			tolerance: 0.5,
		},
		{
			name: "white",
			rgb:  [3]uint8{255, 255, 255},
			wantL: 100, wantA: 0, wantB: 0,
			tolerance: 0.5,
		},
		{
			name: "red",
			rgb:  [3]uint8{255, 0, 0},
			wantL: 53.2, wantA: 80.1, wantB: 67.2,
			tolerance: 1.0,
		},
		{
			name: "green",
			rgb:  [3]uint8{0, 255, 0},
			wantL: 87.7, wantA: -86.2, wantB: 83.2,
			tolerance: 1.0,
		},
		{
			name: "blue",
			rgb:  [3]uint8{0, 0, 255},
			wantL: 32.3, wantA: 79.2, wantB: -107.9,
			tolerance: 1.0,
		},
		{
			name: "mid gray is neutral",
			rgb:  [3]uint8{128, 128, 128},
			wantL: 53.6, wantA: 0, wantB: 0,
			tolerance: 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lab := RGBToLab(tt.rgb[:])
			got := [3]float64{float64(lab[0]), float64(lab[1]), float64(lab[2])}
			want := [3]float64{tt.wantL, tt.wantA, tt.wantB}
			for c, label := range []string{"L", "a", "b"} {
				if math.Abs(got[c]-want[c]) > tt.tolerance {
					t.Errorf("%s: got %.2f, want ~%.2f", label, got[c], want[c])
				}
			}
		})
	}
}

func TestLabRoundTrip(t *testing.T) {
	// Every channel combination over a coarse grid must survive
	// RGB → Lab → RGB within ±1 per channel.
	for r := 0; r <= 255; r += 51 {
		for g := 0; g <= 255; g += 51 {
			for b := 0; b <= 255; b += 51 {
				in := []uint8{uint8(r), uint8(g), uint8(b)}
				out := LabToRGB(RGBToLab(in))
				for c := 0; c < 3; c++ {
					diff := int(in[c]) - int(out[c])
					if diff < -1 || diff > 1 {
						t.Fatalf("rgb(%d,%d,%d) channel %d: got %d, want %d ±1",
							r, g, b, c, out[c], in[c])
					}
				}
			}
		}
	}
}

func TestLabToLch(t *testing.T) {
	tests := []struct {
		name      string
		lab       [3]float32
		wantC     float64
		wantH     float64
		tolerance float64
	}{
		{"pure positive a is 0 degrees", [3]float32{50, 40, 0}, 40, 0, 0.01},
		{"pure positive b is 90 degrees", [3]float32{50, 0, 40}, 40, 90, 0.01},
		{"pure negative a is 180 degrees", [3]float32{50, -40, 0}, 40, 180, 0.01},
		{"pure negative b is 270 degrees", [3]float32{50, 0, -40}, 40, 270, 0.01},
		{"diagonal", [3]float32{50, 30, 30}, 42.43, 45, 0.01},
		{"achromatic has zero chroma", [3]float32{50, 0, 0}, 0, 0, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lch := LabToLch(tt.lab[:])
			if lch[0] != tt.lab[0] {
				t.Errorf("L changed: got %f, want %f", lch[0], tt.lab[0])
			}
			if math.Abs(float64(lch[1])-tt.wantC) > tt.tolerance {
				t.Errorf("C: got %f, want %f", lch[1], tt.wantC)
			}
			if math.Abs(float64(lch[2])-tt.wantH) > tt.tolerance {
				t.Errorf("H: got %f, want %f", lch[2], tt.wantH)
			}
		})
	}
}

func TestLabToLchHueRange(t *testing.T) {
	for a := -80; a <= 80; a += 16 {
		for b := -80; b <= 80; b += 16 {
			lch := LabToLch([]float32{50, float32(a), float32(b)})
			if lch[2] < 0 || lch[2] >= 360 {
				t.Fatalf("hue out of [0,360) for a=%d b=%d: %f", a, b, lch[2])
			}
		}
	}
}

func TestLabDistance(t *testing.T) {
	t.Run("identical is zero", func(t *testing.T) {
		c := [3]float32{50, 10, -20}
		if d := LabDistance(c, c); d != 0 {
			t.Errorf("got %f, want 0", d)
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		a := [3]float32{10, 20, 30}
		b := [3]float32{40, -10, 5}
		if LabDistance(a, b) != LabDistance(b, a) {
			t.Error("distance is not symmetric")
		}
	})

	t.Run("unit axis distances", func(t *testing.T) {
		origin := [3]float32{0, 0, 0}
		if d := LabDistance(origin, [3]float32{3, 4, 0}); math.Abs(float64(d)-5) > 1e-5 {
			t.Errorf("got %f, want 5", d)
		}
	})
}

func TestRGBToHex(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    string
	}{
		{0, 0, 0, "#000000"},
		{255, 255, 255, "#FFFFFF"},
		{123, 122, 100, "#7B7A64"},
		{1, 2, 3, "#010203"},
	}
	for _, tt := range tests {
		if got := RGBToHex(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("RGBToHex(%d,%d,%d) = %q, want %q", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [3]uint8
		wantErr bool
	}{
		{name: "6-digit with hash", input: "#7B7A64", want: [3]uint8{0x7B, 0x7A, 0x64}},
		{name: "6-digit without hash", input: "7B7A64", want: [3]uint8{0x7B, 0x7A, 0x64}},
		{name: "lowercase", input: "#ff00aa", want: [3]uint8{255, 0, 170}},
		{name: "3-digit", input: "#F0A", want: [3]uint8{255, 0, 170}},
		{name: "empty", input: "", wantErr: true},
		{name: "bad length", input: "#FFFF", wantErr: true},
		{name: "non-hex", input: "#ZZZZZZ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HexToRGB(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	original := [3]uint8{42, 128, 200}
	parsed, err := HexToRGB(RGBToHex(original[0], original[1], original[2]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != original {
		t.Errorf("round-trip failed: got %v, want %v", parsed, original)
	}
}

func TestLinearToSRGBClampsNegative(t *testing.T) {
	// The Lab inverse matrix can hand back negative linear values for
	// out-of-gamut colors; they must encode as 0, not a negative sRGB.
	for _, c := range []float32{-0.5, -0.001, 0} {
		if got := LinearToSRGB(c); got != 0 {
			t.Errorf("LinearToSRGB(%f) = %f, want 0", c, got)
		}
	}
}

func TestGammaRoundTrip(t *testing.T) {
	for i := 0; i <= 20; i++ {
		c := float32(i) / 20.0
		back := LinearToSRGB(SRGBToLinear(c))
		if math.Abs(float64(back-c)) > 1e-4 {
			t.Errorf("gamma round-trip at %f: got %f", c, back)
		}
	}
}
