package param

import (
	"math"
	"testing"
)

func TestThresholdDescriptor(t *testing.T) {
	if Threshold.Min != -90 || Threshold.Max != 20 || Threshold.Default != -45 {
		t.Fatalf("unexpected range: %+v", Threshold)
	}
	if Threshold.RampMs != 25 {
		t.Fatalf("RampMs = %v, want 25", Threshold.RampMs)
	}
}

func TestDescriptorClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"inside", -12.5, -12.5},
		{"below", -120, -90},
		{"above", 40, 20},
		{"nan", float32(math.NaN()), -45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Threshold.Clamp(tt.in); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDescriptorFormat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{-45, "-45.00 dB"},
		{20, "20.00 dB"},
		{-3.14159, "-3.14 dB"},
		{0, "0.00 dB"},
	}

	for _, tt := range tests {
		if got := Threshold.Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescriptorParse(t *testing.T) {
	tests := []struct {
		in      string
		want    float32
		wantErr bool
	}{
		{"-45", -45, false},
		{"-12.5 dB", -12.5, false},
		{"  6dB ", 6, false},
		{"100", 20, false},
		{"loud", 0, true},
		{"NaN", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Threshold.Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDescriptorNormalize(t *testing.T) {
	if got := Threshold.Normalize(-90); got != 0 {
		t.Errorf("Normalize(min) = %v, want 0", got)
	}
	if got := Threshold.Normalize(20); got != 1 {
		t.Errorf("Normalize(max) = %v, want 1", got)
	}
	if got := Threshold.Denormalize(0.5); got != -35 {
		t.Errorf("Denormalize(0.5) = %v, want -35", got)
	}
	if got := Threshold.Denormalize(2); got != 20 {
		t.Errorf("Denormalize(2) = %v, want 20", got)
	}

	for _, v := range []float32{-90, -45, -10, 0, 20} {
		got := Threshold.Denormalize(Threshold.Normalize(v))
		if math.Abs(float64(got-v)) > 1e-4 {
			t.Errorf("round trip %v -> %v", v, got)
		}
	}
}

func TestDescriptorRampSteps(t *testing.T) {
	tests := []struct {
		sampleRate float32
		want       int
	}{
		{48000, 1200},
		{44100, 1103}, // 1102.5 rounds away from zero
		{1000, 25},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Threshold.RampSteps(tt.sampleRate); got != tt.want {
			t.Errorf("RampSteps(%v) = %d, want %d", tt.sampleRate, got, tt.want)
		}
	}
}
