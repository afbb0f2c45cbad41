package booking

import "labbooking/internal/pkg/apperr"

var (
	ErrBookingNotFound    = apperr.NotFound("Booking not found")
	ErrInstrumentNotFound = apperr.NotFound("Instrument not found")
	ErrInstrumentDown     = apperr.Validation("Instrument is not working")
	ErrOutsideHours       = apperr.Validation("Slot must start between 10:00 and 18:00")
	ErrInvalidApprover    = apperr.Validation("Approver must be an existing admin")
	ErrSlotTaken          = apperr.Conflict("This time slot is already booked")
	ErrAlreadyDecided     = apperr.Conflict("Booking has already been decided")
	ErrNotApprover        = apperr.Forbidden("Not authorized to make a decision on this booking")
	ErrAdminOnly          = apperr.Forbidden("Only admins can view all bookings")
	ErrInvalidDecision    = apperr.Validation("status must be one of: approved, rejected")
)
