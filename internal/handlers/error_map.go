package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/townbook-za/townbook/internal/httperr"
)

// mapBookingError turns domain rule violations into the API error
// envelope. Anything without a business code is an internal failure.
func mapBookingError(c *gin.Context, err error) {
	code, ok := httperr.BusinessCode(err)
	if !ok {
		httperr.Internal(c, "booking_failed", "Could not process the booking.")
		return
	}

	switch code {
	case "business_not_active":
		httperr.BadRequest(c, code, "This business is not accepting bookings.")
	case "invalid_date_or_time":
		httperr.BadRequest(c, code, "Invalid date or time.")
	case "invalid_date":
		httperr.BadRequest(c, code, "Invalid date.")
	case "too_soon":
		httperr.BadRequest(c, code, "That time is too soon to book.")
	case "service_not_found":
		httperr.BadRequest(c, code, "Service not found.")
	case "outside_working_hours":
		httperr.BadRequest(c, code, "Outside working hours.")
	case "time_conflict":
		httperr.Conflict(c, code, "That time slot was just taken.")
	case "booking_not_found":
		httperr.NotFound(c, code, "Booking not found.")
	case "invalid_state":
		httperr.BadRequest(c, code, "The booking cannot change to that state.")
	case "invalid_year", "invalid_month":
		httperr.BadRequest(c, code, "Invalid period.")
	default:
		httperr.BadRequest(c, code, "Could not process the booking.")
	}
}
