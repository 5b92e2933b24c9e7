package service

import (
	"math"
	"testing"
	"time"
)

func TestSafeGoRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	SafeGo("panicking worker", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
		// recovered: the panic did not take the process down
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine never finished")
	}
}

func TestClampFloat64(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"below", -2, -1},
		{"above", 2, 1},
		{"inside", 0.5, 0.5},
		{"NaN collapses to min", math.NaN(), -1},
		{"Inf collapses to min", math.Inf(1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampFloat64(tt.value, -1, 1); got != tt.want {
				t.Fatalf("ClampFloat64(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		price float64
		want  bool
	}{
		{100000, true},
		{0, false},
		{-1, false},
		{math.NaN(), false},
		{1e11, false},
	}

	for _, tt := range tests {
		if got := ValidatePrice(tt.price); got != tt.want {
			t.Fatalf("ValidatePrice(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}
