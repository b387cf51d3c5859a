package model

import "testing"

func TestValidPort(t *testing.T) {
	tests := []struct {
		port int
		want bool
	}{
		{1023, false},
		{1024, true},
		{3000, true},
		{65535, true},
		{65536, false},
		{0, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := ValidPort(tt.port); got != tt.want {
			t.Errorf("ValidPort(%d) = %v, want %v", tt.port, got, tt.want)
		}
	}
}

func TestInOptimisticBand(t *testing.T) {
	tests := []struct {
		port int
		want bool
	}{
		{2999, false},
		{3000, true},
		{9999, true},
		{10000, false},
	}
	for _, tt := range tests {
		if got := InOptimisticBand(tt.port); got != tt.want {
			t.Errorf("InOptimisticBand(%d) = %v, want %v", tt.port, got, tt.want)
		}
	}
}
