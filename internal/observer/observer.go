// Package observer fans out calculation notifications to interested
// sinks. Observer failures are isolated: they are logged and never
// reach the caller.
package observer

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/artpar/tally/internal/calc"
)

// Observer is notified after each successful calculation.
type Observer interface {
	Update(c calc.Calculation) error
}

// Func adapts a function to the Observer interface.
type Func func(c calc.Calculation) error

// Update implements Observer.
func (f Func) Update(c calc.Calculation) error {
	return f(c)
}

// Bus dispatches calculations to subscribed observers synchronously,
// in subscription order.
type Bus struct {
	observers []Observer
	log       zerolog.Logger
}

// NewBus creates an empty Bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log.With().Str("component", "observer").Logger()}
}

// Subscribe registers an observer. Observers are notified in the
// order they were subscribed.
func (b *Bus) Subscribe(o Observer) {
	b.observers = append(b.observers, o)
}

// Len returns the number of subscribed observers.
func (b *Bus) Len() int {
	return len(b.observers)
}

// Notify invokes every observer with the calculation. A failing or
// panicking observer does not stop the remaining observers and the
// failure is never surfaced to the caller.
func (b *Bus) Notify(c calc.Calculation) {
	for _, o := range b.observers {
		if err := b.notifyOne(o, c); err != nil {
			b.log.Error().Err(err).Str("calculation", c.String()).Msg("observer notification failed")
		}
	}
}

func (b *Bus) notifyOne(o Observer, c calc.Calculation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panicked: %v", r)
		}
	}()
	return o.Update(c)
}
