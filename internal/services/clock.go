package services

import (
	"time"

	"github.com/yukikurage/team-todo-api/internal/utils"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC at second precision.
func SystemClock() time.Time {
	return utils.NormalizeTime(time.Now())
}
