package simtemp

import "time"

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Timer(d time.Duration) Timer
}

// Timer abstracts a resettable one-shot timer. The sampler re-arms its
// timer each cycle instead of running on a fixed ticker, so interval
// changes take effect on the next arm.
type Timer interface {
	Chan() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}
