package main

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"microseconds", 250 * time.Microsecond, "250µs"},
		{"milliseconds", 42 * time.Millisecond, "42ms"},
		{"seconds", 1500 * time.Millisecond, "1.5s"},
		{"minutes", 90 * time.Second, "1.5m"},
		{"zero", 0, "0µs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		elapsed time.Duration
		want    string
	}{
		{"whole", 100, 10 * time.Second, "10.0 req/s"},
		{"fractional", 3, 2 * time.Second, "1.5 req/s"},
		{"zero elapsed", 5, 0, "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatRate(tt.count, tt.elapsed)
			if got != tt.want {
				t.Errorf("formatRate(%d, %v) = %q, want %q", tt.count, tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestPercentageString(t *testing.T) {
	tests := []struct {
		name  string
		part  int
		total int
		want  string
	}{
		{"half", 1, 2, "50.0%"},
		{"all", 10, 10, "100.0%"},
		{"none", 0, 10, "0.0%"},
		{"zero total", 3, 0, "0.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentageString(tt.part, tt.total)
			if got != tt.want {
				t.Errorf("percentageString(%d, %d) = %q, want %q", tt.part, tt.total, got, tt.want)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
	}

	tests := []struct {
		name string
		data []time.Duration
		p    int
		want time.Duration
	}{
		{"p50", sorted, 50, 30 * time.Millisecond},
		{"p99 clamps to last", sorted, 99, 40 * time.Millisecond},
		{"p0", sorted, 0, 10 * time.Millisecond},
		{"empty", nil, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentile(tt.data, tt.p)
			if got != tt.want {
				t.Errorf("percentile(p=%d) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}
