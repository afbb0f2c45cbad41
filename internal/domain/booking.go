package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// ActiveStatuses occupy a slot.
var ActiveStatuses = []BookingStatus{BookingPending, BookingApproved}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case BookingPending:
		return BookingPending, nil
	case BookingApproved:
		return BookingApproved, nil
	case BookingRejected:
		return BookingRejected, nil
	default:
		return "", fmt.Errorf("unknown booking status %q", raw)
	}
}

func (s BookingStatus) IsActive() bool {
	switch s {
	case BookingPending, BookingApproved:
		return true
	default:
		return false
	}
}

// IsDecision reports whether s is a valid outcome of an approval decision.
func (s BookingStatus) IsDecision() bool {
	switch s {
	case BookingApproved, BookingRejected:
		return true
	default:
		return false
	}
}

func (s BookingStatus) IsTerminal() bool {
	return s.IsDecision()
}

type Booking struct {
	ID            int64         `json:"id"`
	InstrumentID  int64         `json:"instrument_id"`
	Slot          time.Time     `json:"slot"`
	RequestedByID int64         `json:"requested_by_id"`
	RequestedToID int64         `json:"requested_to_id"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
