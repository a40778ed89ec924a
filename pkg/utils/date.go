package utils

import (
	"time"
)

// TimeNowIn returns the current time in the named location, or UTC when the
// location cannot be loaded.
func TimeNowIn(name string) time.Time {
	if name == "" {
		return time.Now().UTC()
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}
