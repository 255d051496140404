package timezone

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const DefaultTimezone = "UTC"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

// SlotStart interprets a slot's date and start time as wall-clock time in the
// clinic's zone.
func SlotStart(date, startTime, tz string) (time.Time, error) {
	return time.ParseInLocation(
		validators.DateLayout+" "+validators.ClockLayout,
		date+" "+startTime,
		Location(tz),
	)
}
