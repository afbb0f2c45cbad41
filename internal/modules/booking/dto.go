package booking

import (
	"time"

	"labbooking/internal/pkg/apperr"
)

const MaxPageLimit = 100

type CreateBookingRequest struct {
	InstrumentID  int64     `json:"instrument_id" binding:"required,gt=0"`
	Slot          time.Time `json:"slot" binding:"required"`
	RequestedToID int64     `json:"requested_to_id" binding:"required,gt=0"`
}

type DecisionRequest struct {
	Status string `json:"status" binding:"required"`
}

// MineFilter narrows ListMine by lab and instrument class.
type MineFilter struct {
	LabName        string
	InstrumentName string
}

// AllFilter narrows the admin listing.
type AllFilter struct {
	UserID       int64
	InstrumentID int64
}

// PageRequest carries raw pagination input. Nil means "not supplied".
type PageRequest struct {
	Limit  *int
	Offset *int
}

type Page struct {
	Limit  int
	Offset int
}

// resolvePage applies the default limit and enforces 1 <= limit <= 100 and
// offset >= 0.
func resolvePage(req PageRequest, defaultLimit int) (Page, error) {
	p := Page{Limit: defaultLimit}
	if req.Limit != nil {
		if *req.Limit < 1 || *req.Limit > MaxPageLimit {
			return Page{}, apperr.Validation("limit must be between 1 and 100")
		}
		p.Limit = *req.Limit
	}
	if req.Offset != nil {
		if *req.Offset < 0 {
			return Page{}, apperr.Validation("offset must be non-negative")
		}
		p.Offset = *req.Offset
	}
	return p, nil
}
