package appointmentRepo

import (
	"receptionist/models"
	"receptionist/utils"
)

// conflictsWith reports whether the half-open interval [startMin, endMin)
// overlaps the appointment's own interval. Appointments with unparseable
// times are treated as conflicting so bad data never opens a double booking.
func conflictsWith(existing models.Appointment, startMin, endMin int) bool {
	existingStart, err := utils.MinutesOfDay(existing.AppointmentTime)
	if err != nil {
		return true
	}
	existingEnd := existingStart + existing.DurationMinutes
	return endMin > existingStart && startMin < existingEnd
}
