package lighting

import (
	gomath "math"
	"testing"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name       string
		az, el     float32
		wx, wy, wz float32
	}{
		{"north horizon", 0, 0, 0, 1, 0},
		{"east horizon", 90, 0, 1, 0, 0},
		{"zenith", 0, 90, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := SunDirection(tt.az, tt.el)
			if !near(d.X, tt.wx) || !near(d.Y, tt.wy) || !near(d.Z, tt.wz) {
				t.Errorf("SunDirection(%v, %v) = %v, want (%v, %v, %v)", tt.az, tt.el, d, tt.wx, tt.wy, tt.wz)
			}
			if l := d.Length(); !near(l, 1) {
				t.Errorf("length = %v, want 1", l)
			}
		})
	}
}

func TestLightDirectionPointsDown(t *testing.T) {
	if d := LightDirection(135, 40); d.Z >= 0 {
		t.Errorf("light from above the horizon should travel downwards, got %v", d)
	}
}

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}
