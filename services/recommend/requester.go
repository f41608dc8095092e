package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"carbon-track/models"
	"carbon-track/services/aggregate"
)

// DefaultTimeout borne un appel au collaborateur.
const DefaultTimeout = 60 * time.Second

var (
	// ErrNoData est retourné quand aucun usage n'a été enregistré.
	ErrNoData = errors.New("recommend: no emission data")
	// ErrRequestInFlight est retourné quand une demande est déjà en cours.
	ErrRequestInFlight = errors.New("recommend: request already in flight")
	// ErrCollaborator couvre tout échec du service externe (transport, schéma, service).
	ErrCollaborator = errors.New("recommend: collaborator failed")
)

// State est l'état de la machine de demande.
type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Outcome classe le résultat d'une demande pour les métriques.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeNoData  Outcome = "no_data"
	OutcomeFailure Outcome = "failure"
)

// Status est l'instantané observable d'un Requester.
type Status struct {
	State           State     `json:"state"`
	Recommendations []string  `json:"recommendations,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Options configure les Requesters.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
	// OnOutcome est appelé après chaque demande terminée.
	OnOutcome func(Outcome, time.Duration)
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Requester est la machine d'état d'un formulaire de recommandation :
// Idle -> Requesting -> Succeeded | Failed, puis Requesting à la demande suivante.
type Requester struct {
	collab Collaborator
	opts   Options

	mu     sync.Mutex
	status Status
}

// NewRequester crée une machine au repos.
func NewRequester(collab Collaborator, opts Options) *Requester {
	opts = opts.withDefaults()
	return &Requester{
		collab: collab,
		opts:   opts,
		status: Status{State: StateIdle, UpdatedAt: opts.Now()},
	}
}

// Status retourne l'état courant.
func (r *Requester) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	s.Recommendations = append([]string(nil), r.status.Recommendations...)
	return s
}

// Request valide le formulaire, vérifie qu'il existe des usages puis interroge
// le collaborateur. Une erreur de formulaire laisse l'état inchangé. Aucun
// nouvel essai n'est tenté en cas d'échec.
func (r *Requester) Request(ctx context.Context, recs []models.EmissionRecord, form Form) ([]string, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.status.State == StateRequesting {
		r.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	usage := aggregate.SumUsage(recs)
	if !(usage.Sum() > 0) {
		r.setLocked(Status{State: StateFailed, Reason: "Please add some emission records before getting suggestions."})
		r.mu.Unlock()
		r.report(OutcomeNoData, 0)
		return nil, ErrNoData
	}
	r.setLocked(Status{State: StateRequesting})
	r.mu.Unlock()

	in := Input{
		ElectricityUsage: usage.Electricity,
		FuelConsumption:  usage.Fuel,
		WasteGeneration:  usage.Waste,
		Location:         form.Location,
		Lifestyle:        form.Lifestyle,
	}

	start := r.opts.Now()
	out, err := r.call(ctx, in)
	elapsed := r.opts.Now().Sub(start)

	if err != nil {
		r.opts.Logger.Error("recommendation request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		r.mu.Lock()
		r.setLocked(Status{State: StateFailed, Reason: "Failed to get AI suggestions. Please try again."})
		r.mu.Unlock()
		r.report(OutcomeFailure, elapsed)
		return nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}

	suggestions := slices.Clone(out.Recommendations)
	r.mu.Lock()
	r.setLocked(Status{State: StateSucceeded, Recommendations: slices.Clone(suggestions)})
	r.mu.Unlock()
	r.report(OutcomeSuccess, elapsed)
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}

func (r *Requester) call(ctx context.Context, in Input) (out Output, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("collaborator panic: %v", p)
		}
	}()
	out, err = r.collab.SuggestReductions(ctx, in)
	if err != nil {
		return Output{}, err
	}
	if out.Recommendations == nil {
		return Output{}, fmt.Errorf("%w: missing recommendations", ErrSchema)
	}
	return out, nil
}

func (r *Requester) setLocked(s Status) {
	s.UpdatedAt = r.opts.Now()
	r.status = s
}

func (r *Requester) report(o Outcome, d time.Duration) {
	if r.opts.OnOutcome != nil {
		r.opts.OnOutcome(o, d)
	}
}

// Desk distribue un Requester par identité.
type Desk struct {
	collab Collaborator
	opts   Options

	mu         sync.Mutex
	requesters map[string]*Requester
}

func NewDesk(collab Collaborator, opts Options) *Desk {
	return &Desk{collab: collab, opts: opts.withDefaults(), requesters: make(map[string]*Requester)}
}

// For retourne le Requester de l'identité, créé au besoin.
func (d *Desk) For(identity string) *Requester {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.requesters[identity]
	if !ok {
		r = NewRequester(d.collab, d.opts)
		d.requesters[identity] = r
	}
	return r
}

// Forget oublie l'état d'une identité (déconnexion).
func (d *Desk) Forget(identity string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.requesters, identity)
}
