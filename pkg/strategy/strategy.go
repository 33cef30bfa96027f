package strategy

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Profile is the canonical identity record resolved from a verified token.
// Treat it as immutable once it has been handed to the cache or a caller;
// a refresh produces a new Profile rather than mutating an existing one.
type Profile struct {
	Subject     string // Provider-scoped unique identifier; the only required field.
	Provider    string // Name of the strategy/provider that authenticated the subject.
	DisplayName string
	Emails      []string
	Photos      []string
}

// Clone returns a deep copy so shared stores never alias caller-held slices.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	clone := *p
	clone.Emails = append([]string(nil), p.Emails...)
	clone.Photos = append([]string(nil), p.Photos...)
	return &clone
}

type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionReject  Decision = "reject"
	DecisionAbstain Decision = "abstain"
)

// Outcome is the three-way result of an authentication attempt. Exactly one
// Decision is produced per call. Abstain means "this strategy does not apply
// to the request's scheme"; Reject means the scheme was recognized but the
// credential did not verify. Status and Details are optional hints for the
// host pipeline.
type Outcome struct {
	Decision Decision
	Profile  *Profile
	Status   int
	Details  map[string]string
}

func Accept(profile *Profile) Outcome {
	return Outcome{Decision: DecisionAccept, Profile: profile}
}

func Reject() Outcome {
	return Outcome{Decision: DecisionReject}
}

func RejectWith(status int, details map[string]string) Outcome {
	return Outcome{Decision: DecisionReject, Status: status, Details: details}
}

func Abstain() Outcome {
	return Outcome{Decision: DecisionAbstain}
}

func AbstainWith(status int, details map[string]string) Outcome {
	return Outcome{Decision: DecisionAbstain, Status: status, Details: details}
}

// Delegate is an optional extension point invoked after a successful
// verification, before the profile is cached. It may mutate or augment the
// profile using the raw provider payload. Absence is the common case.
type Delegate interface {
	Update(profile *Profile, raw map[string]any)
}

// DelegateFunc adapts a plain function to the Delegate interface.
type DelegateFunc func(profile *Profile, raw map[string]any)

func (f DelegateFunc) Update(profile *Profile, raw map[string]any) {
	f(profile, raw)
}

// Options carries per-call configuration. Construction-time configuration on
// a strategy takes precedence over values supplied here.
type Options struct {
	Delegate Delegate
	TokenTTL *time.Duration // nil means cached profiles never expire by policy.
}

// Strategy authenticates a single request and emits exactly one Outcome.
// Implementations must be safe for concurrent use.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, req *http.Request, opts Options) Outcome
}

var (
	ErrNilStrategy   = errors.New("strategy: strategy is nil")
	ErrEmptyName     = errors.New("strategy: strategy name is empty")
	ErrDuplicateName = errors.New("strategy: strategy already exists")
)

// Registry holds named strategies and preserves registration order so a host
// pipeline can run them deterministically. It performs no auth logic itself.
type Registry struct {
	strategies map[string]Strategy
	order      []string
}

func NewRegistry(strategies ...Strategy) (*Registry, error) {
	r := &Registry{
		strategies: map[string]Strategy{},
	}

	for _, s := range strategies {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return ErrNilStrategy
	}

	name := s.Name()
	if name == "" {
		return ErrEmptyName
	}

	if _, exists := r.strategies[name]; exists {
		return ErrDuplicateName
	}

	r.strategies[name] = s
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Strategy(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// All returns the registered strategies in registration order.
func (r *Registry) All() []Strategy {
	all := make([]Strategy, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.strategies[name])
	}
	return all
}
