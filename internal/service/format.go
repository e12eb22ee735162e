package service

import "fmt"

// FormatDuration formats a duration in seconds as "1h 02m 03s".
// Nil in, nil out.
func FormatDuration(seconds *float64) *string {
	if seconds == nil {
		return nil
	}
	total := int(*seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	s := fmt.Sprintf("%01dh %02dm %02ds", hours, minutes, secs)
	return &s
}

// FormatSleepDuration formats a sleep duration as "7h 05m", without a
// leading zero on the hours.
func FormatSleepDuration(seconds *int) *string {
	if seconds == nil {
		return nil
	}
	hours := *seconds / 3600
	minutes := (*seconds % 3600) / 60
	s := fmt.Sprintf("%dh %02dm", hours, minutes)
	return &s
}

// FormatDistance formats a distance in meters as "12.34km".
func FormatDistance(meters *float64) *string {
	if meters == nil {
		return nil
	}
	s := fmt.Sprintf("%.2fkm", *meters/1000)
	return &s
}
