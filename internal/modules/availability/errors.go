package availability

import "labbooking/internal/pkg/apperr"

var (
	ErrLabNotFound        = apperr.NotFound("Lab not found")
	ErrInstrumentNotFound = apperr.NotFound("No working instruments with this name in the lab")
)
