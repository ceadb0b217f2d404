package utils

import (
	"fmt"
	"time"
)

// HumanizeDuration formats seconds to a human-friendly string.
func HumanizeDuration(s int) string {
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm%02ds", s/60, s%60)
	case s < 86400:
		return fmt.Sprintf("%dh%02dm", s/3600, s%3600/60)
	default:
		return fmt.Sprintf("%dd%02dh", s/86400, s%86400/3600)
	}
}

// Elapsed humanizes the time between start and end.
func Elapsed(start, end time.Time) string {
	return HumanizeDuration(int(end.Sub(start).Seconds()))
}
