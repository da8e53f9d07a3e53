package form

import (
	"context"
	"time"

	"github.com/jonathan/jobtrack/internal/logging"
	"github.com/jonathan/jobtrack/internal/types"
	"github.com/sirupsen/logrus"
)

// RedirectAfterSubmit is where the client goes once a submission is saved.
const RedirectAfterSubmit = "/applications"

// Adder is the slice of the record store the form needs.
type Adder interface {
	Add(rec types.ApplicationRecord) types.ApplicationRecord
}

// Result is a saved submission.
type Result struct {
	Record   types.ApplicationRecord `json:"record"`
	Redirect string                  `json:"redirect"`
}

// Form validates submissions and saves them.
type Form struct {
	store     Adder
	validator *Validator
	delay     time.Duration
	today     func() types.Date
	log       *logrus.Entry
}

// Option configures a Form.
type Option func(*Form)

// WithDelay sets the artificial latency applied before saving.
func WithDelay(d time.Duration) Option {
	return func(f *Form) { f.delay = d }
}

// WithClock overrides how "today" is determined for defaulted dates.
func WithClock(today func() types.Date) Option {
	return func(f *Form) { f.today = today }
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(f *Form) { f.log = logging.Component(logger, "form") }
}

// New creates a Form writing to st.
func New(st Adder, opts ...Option) *Form {
	f := &Form{
		store:     st,
		validator: NewValidator(),
		today:     types.Today,
		log:       logging.Component(nil, "form"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Validator returns the validator used by the form.
func (f *Form) Validator() *Validator {
	return f.validator
}

// Submit validates sub, waits out the configured delay and adds the record.
// A missing applied date defaults to today. Nothing is saved when ctx ends
// during the delay.
func (f *Form) Submit(ctx context.Context, sub Submission) (*Result, error) {
	sub = sub.Normalize()
	if err := f.validator.Validate(sub); err != nil {
		f.log.WithError(err).Debug("submission rejected")
		return nil, err
	}

	if err := sleep(ctx, f.delay); err != nil {
		return nil, err
	}

	rec := sub.Record()
	if rec.AppliedDate.IsZero() {
		rec.AppliedDate = f.today()
	}

	saved := f.store.Add(rec)
	f.log.WithFields(logrus.Fields{
		"id":      saved.ID,
		"company": saved.CompanyName,
	}).Info("application added")

	return &Result{Record: saved, Redirect: RedirectAfterSubmit}, nil
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
