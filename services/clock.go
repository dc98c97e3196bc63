// services/clock.go
package services

import "time"

// Clock supplies "now" for every window check. Operations re-read it at
// execution time; nothing is cached or predicted.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production wall clock.
func SystemClock() Clock { return systemClock{} }
