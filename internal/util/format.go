// Package util provides formatting, path naming and file helpers.
package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	KiB = 1024
	MiB = KiB * 1024
	GiB = MiB * 1024
)

// FormatBytes formats bytes with binary units (B, KiB, MiB, GiB).
func FormatBytes(bytes uint64) string {
	bf := float64(bytes)
	switch {
	case bf >= GiB:
		return fmt.Sprintf("%.2f GiB", bf/GiB)
	case bf >= MiB:
		return fmt.Sprintf("%.2f MiB", bf/MiB)
	case bf >= KiB:
		return fmt.Sprintf("%.2f KiB", bf/KiB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// BytesToMB converts a byte count to megabytes (MiB) rounded to 2 decimals.
func BytesToMB(bytes uint64) float64 {
	return Round2(float64(bytes) / MiB)
}

// FormatDuration formats seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		return "??:??:??"
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatSeconds formats a duration as seconds with two decimals, e.g. "12.35s".
func FormatSeconds(seconds float64) string {
	return fmt.Sprintf("%.2fs", seconds)
}

// ParseFFmpegTime parses an FFmpeg time string (HH:MM:SS.MS) to seconds.
func ParseFFmpegTime(timeStr string) (float64, bool) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, false
	}

	return hours*3600 + minutes*60 + seconds, true
}

// CalculateReduction returns the percentage by which after shrank relative to
// before. Negative values mean growth.
func CalculateReduction(before, after float64) float64 {
	if before <= 0 {
		return 0
	}
	return (before - after) / before * 100
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Truncate shortens s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Preview shortens s to limit runes and appends an ellipsis when cut.
func Preview(s string, limit int) string {
	cut := Truncate(s, limit)
	if cut == s {
		return s
	}
	return cut + "..."
}
