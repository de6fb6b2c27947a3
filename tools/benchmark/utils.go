// Package main provides helper functions for the benchmark CLI
package main

import (
	"fmt"
	"time"
)

// formatDuration renders a duration at a readable precision
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}

// formatRate renders a count over a duration as requests per second
func formatRate(count int, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f req/s", float64(count)/elapsed.Seconds())
}

// percentageString renders part of total as a percentage
func percentageString(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

// percentile picks the pth percentile from a sorted slice
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// statusEmoji picks an indicator for the completed row of the report
func statusEmoji(completed, notCompleted int) string {
	switch {
	case notCompleted == 0 && completed > 0:
		return "✅"
	case completed == 0:
		return "❌"
	default:
		return "⚠️"
	}
}
