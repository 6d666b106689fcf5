package ucase

import (
	"context"
	"sync"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/pkg/errors"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseError
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseError:
		return "error"
	case PhaseResult:
		return "result"
	default:
		return "idle"
	}
}

// ErrResultDiscarded is returned by Submit when the form was edited while the
// request was in flight. The response is dropped and the form stays idle.
var ErrResultDiscarded = errors.New("form edited while prediction was pending, result discarded")

var ErrUnknownField = errors.New("unknown form field")

type Processor interface {
	Predict(ctx context.Context, domain entities.Domain, values map[string]string) (entities.View, error)
}

// Form holds the raw input of one prediction page and the outcome of its last
// submission. Any edit clears the outcome.
type Form struct {
	mu sync.Mutex

	domain  entities.Domain
	values  map[string]string
	edits   uint64
	pending bool
	view    *entities.View
	err     error
}

func NewForm(domain entities.Domain) (*Form, error) {
	if entities.Fields(domain) == nil {
		return nil, entities.ErrUnknownDomain
	}

	return &Form{
		domain: domain,
		values: entities.Defaults(domain),
	}, nil
}

func (f *Form) Domain() entities.Domain { return f.domain }

func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.values[field]; !ok {
		return errors.Wrapf(ErrUnknownField, "%q", field)
	}

	f.values[field] = value
	f.edits++
	f.view = nil
	f.err = nil

	return nil
}

func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.values[field]
}

// Submit validates the current values and, if they are valid, hands them to p.
// While a call is outstanding further submissions fail with ErrSubmissionPending.
func (f *Form) Submit(ctx context.Context, p Processor) error {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return entities.ErrSubmissionPending
	}

	f.view = nil
	f.err = nil

	values := copyValues(f.values)
	if _, err := Validate(f.domain, values); err != nil {
		f.err = err
		f.mu.Unlock()
		return err
	}

	f.pending = true
	started := f.edits
	f.mu.Unlock()

	view, err := p.Predict(ctx, f.domain, values)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = false
	if f.edits != started {
		return ErrResultDiscarded
	}

	if err != nil {
		f.err = err
		return err
	}

	f.view = &view
	return nil
}

type Snapshot struct {
	Domain entities.Domain
	Phase  Phase
	Values map[string]string
	View   *entities.View
	Error  string
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		Domain: f.domain,
		Phase:  PhaseIdle,
		Values: copyValues(f.values),
	}

	switch {
	case f.pending:
		s.Phase = PhasePending
	case f.err != nil:
		s.Phase = PhaseError
		s.Error = entities.UserMessage(f.err)
	case f.view != nil:
		s.Phase = PhaseResult
		v := *f.view
		s.View = &v
	}

	return s
}

func copyValues(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
