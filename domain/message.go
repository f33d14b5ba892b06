// Package domain contains core concepts of the chat analyzer.
// This file defines the parsed Message record and its derived calendar fields.
// Messages are immutable once built by the parser.
package domain

import (
	"fmt"
	"time"
)

// GroupNotification is the sender of system lines (joins, leaves, title changes).
const GroupNotification = "group_notification"

// Message represents one parsed chat entry.
type Message struct {
	Timestamp time.Time
	Sender    string
	Body      string

	// Derived once from Timestamp, every metric reads at least one of them.
	Date      time.Time
	Year      int
	Month     time.Month
	MonthName string
	Weekday   time.Weekday
	DayName   string
	Hour      int
	Minute    int
	Period    string
}

// NewMessage builds a Message and computes its calendar fields.
func NewMessage(at time.Time, sender, body string) Message {
	year, month, day := at.Date()
	return Message{
		Timestamp: at,
		Sender:    sender,
		Body:      body,
		Date:      time.Date(year, month, day, 0, 0, 0, 0, at.Location()),
		Year:      year,
		Month:     month,
		MonthName: month.String(),
		Weekday:   at.Weekday(),
		DayName:   at.Weekday().String(),
		Hour:      at.Hour(),
		Minute:    at.Minute(),
		Period:    PeriodLabel(at.Hour()),
	}
}

// IsSystem reports whether the message is a group notification.
func (m Message) IsSystem() bool {
	return m.Sender == GroupNotification
}

// PeriodLabel names the one-hour bucket starting at hour: "00-1", "1-2", ..., "23-00".
func PeriodLabel(hour int) string {
	switch hour {
	case 23:
		return "23-00"
	case 0:
		return "00-1"
	default:
		return fmt.Sprintf("%d-%d", hour, hour+1)
	}
}
