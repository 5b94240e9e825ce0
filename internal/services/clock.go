package services

import "time"

// Clock abstracts time for services whose behavior depends on it, so tests
// can drive lockout expiry and escalation windows deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
