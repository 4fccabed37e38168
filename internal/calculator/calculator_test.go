package calculator

import (
	"math"
	"testing"
)

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %.2f", got)
	}
	if _, err := CalculateSMA([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := CalculateSMA([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCalculateRSI(t *testing.T) {
	rising := []float64{1, 2, 3, 4, 5, 6}
	rsi, err := CalculateRSI(rising, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100 {
		t.Errorf("expected 100 for monotonic rise, got %.2f", rsi)
	}

	falling := []float64{6, 5, 4, 3, 2, 1}
	rsi, _ = CalculateRSI(falling, 3)
	if rsi != 0 {
		t.Errorf("expected 0 for monotonic fall, got %.2f", rsi)
	}

	flat := []float64{3, 3, 3, 3, 3}
	rsi, _ = CalculateRSI(flat, 3)
	if rsi != 50 {
		t.Errorf("expected 50 for flat series, got %.2f", rsi)
	}

	rsi, _ = CalculateRSI([]float64{1, 2}, 14)
	if rsi != 50 {
		t.Errorf("expected 50 default for short series, got %.2f", rsi)
	}
}

func TestCalculateRangeAndPosition(t *testing.T) {
	high, low, err := CalculateRange([]float64{5, 9, 3, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 9 || low != 3 {
		t.Errorf("expected 9/3, got %.0f/%.0f", high, low)
	}
	if _, _, err := CalculateRange(nil); err == nil {
		t.Error("expected error for empty prices")
	}

	tests := []struct {
		current, high, low float64
		want               float64
	}{
		{6, 9, 3, 0.5},
		{1, 9, 3, 0},
		{12, 9, 3, 1},
		{4, 4, 4, 0.5},
	}
	for _, tt := range tests {
		got, err := CalculatePosition(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("position(%.0f,%.0f,%.0f): expected %.2f, got %.2f", tt.current, tt.high, tt.low, tt.want, got)
		}
	}
}

func TestCalculateMomentum(t *testing.T) {
	got, err := CalculateMomentum([]float64{100, 105, 110}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("expected 10%%, got %.4f", got)
	}
	if _, err := CalculateMomentum([]float64{100}, 1); err == nil {
		t.Error("expected error for short series")
	}
}
