package geometry

import (
	"sync"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// Subscription is a cancellable feed of position fixes.
type Subscription struct {
	C <-chan models.Coordinates

	stop    func() error
	once    sync.Once
	stopErr error
}

// NewSubscription wraps a fix channel and the function releasing its source.
func NewSubscription(fixes <-chan models.Coordinates, stop func() error) *Subscription {
	return &Subscription{C: fixes, stop: stop}
}

// Stop releases the underlying source. It is safe to call more than once.
func (s *Subscription) Stop() error {
	s.once.Do(func() {
		if s.stop != nil {
			s.stopErr = s.stop()
		}
	})
	return s.stopErr
}
