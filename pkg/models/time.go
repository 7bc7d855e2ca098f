// Package models defines the snapshot types the slate daemons serve to
// clients. Every type here marshals to the exact line-JSON payload written
// to the daemon sockets, so field names and null semantics are part of the
// wire contract.
package models

import (
	"fmt"
	"time"
)

// TimeInfo is the snapshot served by the time daemon.
type TimeInfo struct {
	TimeStr     string `json:"time_str"`
	DayName     string `json:"day_name"`
	DateStr     string `json:"date_str"`
	FullDisplay string `json:"full_display"`
}

// Equal reports field-wise value equality.
func (t TimeInfo) Equal(other TimeInfo) bool {
	return t == other
}

// NewTimeInfo formats a point in time into the snapshot record.
// Resolution is one minute; seconds are not represented.
func NewTimeInfo(now time.Time) TimeInfo {
	timeStr := now.Format("15:04")
	dayName := now.Format("Mon")
	day := now.Day()
	dateStr := fmt.Sprintf("%d%s %s", day, ordinalSuffix(day), now.Format("Jan"))
	return TimeInfo{
		TimeStr:     timeStr,
		DayName:     dayName,
		DateStr:     dateStr,
		FullDisplay: fmt.Sprintf("%s, %s, %s", timeStr, dayName, dateStr),
	}
}

// ordinalSuffix returns the English ordinal suffix for a day of month.
// 11th-13th are special-cased before the last-digit rules.
func ordinalSuffix(day int) string {
	if day%100 >= 10 && day%100 <= 20 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
