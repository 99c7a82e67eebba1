// Package calculator orchestrates the operation registry, history
// store, persistence, and observers behind a single facade. It is the
// only object the CLI front-ends talk to.
package calculator

import (
	"errors"
	"iter"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/tally/internal/calc"
	"github.com/artpar/tally/internal/config"
	"github.com/artpar/tally/internal/history"
	"github.com/artpar/tally/internal/observer"
)

// ErrNoPersistence is returned by Save and Load when the calculator
// was built without a persistence adapter.
var ErrNoPersistence = errors.New("no persistence configured")

// Persistence saves and loads history entries. *csvfile.Adapter
// satisfies it.
type Persistence interface {
	Save(entries []calc.Calculation) error
	Load() ([]calc.Calculation, error)
	Path() string
}

// Calculator is the facade over the calculation pipeline:
// validate -> resolve -> apply -> record -> notify.
type Calculator struct {
	cfg         config.Config
	store       *history.Store
	bus         *observer.Bus
	persistence Persistence
	archive     history.Archive
	log         zerolog.Logger
	now         func() time.Time
	extra       []observer.Observer
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithPersistence attaches a persistence adapter. When auto-save is
// enabled in the configuration, an auto-save observer is registered
// as well.
func WithPersistence(p Persistence) Option {
	return func(c *Calculator) {
		c.persistence = p
	}
}

// WithArchive attaches a long-term archive; every calculation is
// appended to it best-effort.
func WithArchive(a history.Archive) Option {
	return func(c *Calculator) {
		c.archive = a
	}
}

// WithObserver registers an additional observer, notified after the
// built-in ones.
func WithObserver(o observer.Observer) Option {
	return func(c *Calculator) {
		c.extra = append(c.extra, o)
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// New creates a Calculator from the given configuration. The built-in
// logging observer is always registered; auto-save and archive
// observers are registered when their collaborators are present.
func New(cfg config.Config, log zerolog.Logger, opts ...Option) *Calculator {
	c := &Calculator{
		cfg:   cfg,
		store: history.New(cfg.MaxHistorySize),
		bus:   observer.NewBus(log),
		log:   log.With().Str("component", "calculator").Logger(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.bus.Subscribe(observer.NewLogging(log))
	if c.persistence != nil && cfg.AutoSave {
		c.bus.Subscribe(observer.NewAutoSave(c.store, c.persistence))
	}
	if c.archive != nil {
		c.bus.Subscribe(observer.NewArchiver(c.archive))
	}
	for _, o := range c.extra {
		c.bus.Subscribe(o)
	}

	return c
}

// Compute validates the operands, applies the named operation, records
// the calculation, and notifies observers. Any failure before the
// record step leaves history untouched.
func (c *Calculator) Compute(name string, a, b float64) (float64, error) {
	if err := c.validate(a); err != nil {
		return 0, err
	}
	if err := c.validate(b); err != nil {
		return 0, err
	}

	kind, err := calc.Resolve(name)
	if err != nil {
		return 0, err
	}

	result, err := calc.Apply(kind, a, b)
	if err != nil {
		return 0, err
	}
	result = calc.Round(result, c.cfg.Precision)

	calculation := calc.Calculation{
		OperandA:  a,
		OperandB:  b,
		Operation: kind,
		Result:    result,
		Timestamp: c.now(),
	}

	c.store.Record(calculation)
	c.bus.Notify(calculation)

	return result, nil
}

// Undo restores the history to its state before the last mutation and
// returns the restored entry count.
func (c *Calculator) Undo() (int, error) {
	n, err := c.store.Undo()
	if err != nil {
		return 0, err
	}
	c.log.Info().Int("entries", n).Msg("undo performed")
	return n, nil
}

// Redo reverses the last undo and returns the restored entry count.
func (c *Calculator) Redo() (int, error) {
	n, err := c.store.Redo()
	if err != nil {
		return 0, err
	}
	c.log.Info().Int("entries", n).Msg("redo performed")
	return n, nil
}

// Clear empties the history. The cleared state remains reachable via
// Undo.
func (c *Calculator) Clear() {
	c.store.Clear()
	c.log.Info().Msg("history cleared")
}

// History returns a copy of the current history, oldest first.
func (c *Calculator) History() []calc.Calculation {
	return c.store.List()
}

// All returns a restartable iterator over the current history.
func (c *Calculator) All() iter.Seq[calc.Calculation] {
	return c.store.All()
}

// Len returns the current history length.
func (c *Calculator) Len() int {
	return c.store.Len()
}

// CanUndo reports whether an Undo would succeed.
func (c *Calculator) CanUndo() bool {
	return c.store.CanUndo()
}

// CanRedo reports whether a Redo would succeed.
func (c *Calculator) CanRedo() bool {
	return c.store.CanRedo()
}

// Save writes the current history through the persistence adapter and
// returns the target path.
func (c *Calculator) Save() (string, error) {
	if c.persistence == nil {
		return "", ErrNoPersistence
	}
	if err := c.persistence.Save(c.store.List()); err != nil {
		return "", err
	}
	return c.persistence.Path(), nil
}

// Load hydrates the history from the persistence adapter and returns
// the number of entries loaded. A missing file loads zero entries.
func (c *Calculator) Load() (int, error) {
	if c.persistence == nil {
		return 0, ErrNoPersistence
	}
	entries, err := c.persistence.Load()
	if err != nil {
		return 0, err
	}
	n := c.store.Replace(entries)
	c.log.Info().Int("entries", n).Msg("history loaded")
	return n, nil
}

// Archive returns the attached archive, or nil.
func (c *Calculator) Archive() history.Archive {
	return c.archive
}
