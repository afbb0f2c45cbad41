package catalog

import "labbooking/internal/pkg/apperr"

var (
	ErrLabNotFound        = apperr.NotFound("Lab not found")
	ErrLabExists          = apperr.Conflict("Lab with this name already exists")
	ErrLabInUse           = apperr.Conflict("Lab still has instruments")
	ErrInstrumentNotFound = apperr.NotFound("Instrument not found")
	ErrInstrumentInUse    = apperr.Conflict("Instrument has bookings")
	ErrEmptyPatch         = apperr.Validation("Update payload is empty")
)
