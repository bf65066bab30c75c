// Package persistence decides whether an engaged actor may abandon its
// current target for a new candidate.
package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/config"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/unlock"
)

// ErrUnknownMode is returned for modes that are not registered.
var ErrUnknownMode = errors.New("unknown persistence mode")

// ManualWindow is how long after an explicit strategy change manual_only
// permits a switch.
const ManualWindow = time.Second

// Decision is the input of one switch query.
type Decision struct {
	Current   *model.Entity // nil when Idle
	Candidate *model.Entity

	CurrentThreat   float64
	CandidateThreat float64

	State  *model.TargetingState
	Config *config.Targeting
	Now    time.Time
}

// NewDecision builds a decision using the entities' cached threat levels.
func NewDecision(current, candidate *model.Entity, state *model.TargetingState, cfg *config.Targeting, now time.Time) Decision {
	d := Decision{
		Current:   current,
		Candidate: candidate,
		State:     state,
		Config:    cfg,
		Now:       now,
	}
	if current != nil {
		d.CurrentThreat = current.ThreatLevel
	}
	if candidate != nil {
		d.CandidateThreat = candidate.ThreatLevel
	}
	return d
}

// Policy answers a switch query once the universal preconditions pass.
type Policy func(d Decision) bool

// Preconditions applies the rules shared by every mode. decided is false when
// the mode-specific policy has to answer.
func Preconditions(d Decision) (switchTarget, decided bool) {
	switch {
	case d.State != nil && d.State.Locked:
		return false, true
	case d.Current == nil:
		return true, true
	case !d.Current.Alive:
		return d.Candidate != nil, true
	case d.Candidate == nil:
		return false, true
	case d.Candidate.ID == d.Current.ID:
		return false, true
	}
	return false, false
}

// KeepTarget never trades a live target for a better one.
func KeepTarget(Decision) bool {
	return false
}

// SwitchFreely switches when the candidate's threat exceeds the current
// target's by more than the configured threshold (absolute delta).
func SwitchFreely(d Decision) bool {
	threshold := config.DefaultTargeting().SwitchThreshold
	if d.Config != nil {
		threshold = d.Config.SwitchThreshold
	}
	return d.CandidateThreat-d.CurrentThreat > threshold
}

// SwitchAggressive switches on any strict threat improvement.
func SwitchAggressive(d Decision) bool {
	return d.CandidateThreat > d.CurrentThreat
}

// ManualOnly switches only right after an explicit strategy change.
func ManualOnly(d Decision) bool {
	if d.State == nil || d.State.LastStrategyChange.IsZero() {
		return false
	}
	return d.Now.Sub(d.State.LastStrategyChange) < ManualWindow
}

// Definition describes a registered mode.
type Definition struct {
	Mode        model.PersistenceMode
	Description string
	Policy      Policy
}

// Registry maps persistence modes to policies.
type Registry struct {
	defs  map[model.PersistenceMode]Definition
	order []model.PersistenceMode
}

// NewRegistry creates a registry with the four built-in modes.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[model.PersistenceMode]Definition, 4)}
	for _, def := range []Definition{
		{model.ModeKeepTarget, "Keep current target until it dies or goes out of range", KeepTarget},
		{model.ModeSwitchFreely, "Switch targets when significantly better options are available", SwitchFreely},
		{model.ModeSwitchAggressive, "Always target the best available enemy", SwitchAggressive},
		{model.ModeManualOnly, "Only switch targets when you manually change strategy", ManualOnly},
	} {
		_ = r.Register(def)
	}
	return r
}

// Register adds or replaces a mode.
func (r *Registry) Register(def Definition) error {
	if def.Mode == "" {
		return errors.New("registering persistence mode: empty name")
	}
	if def.Policy == nil {
		return fmt.Errorf("registering persistence mode %q: nil policy", def.Mode)
	}
	if _, exists := r.defs[def.Mode]; !exists {
		r.order = append(r.order, def.Mode)
	}
	r.defs[def.Mode] = def
	return nil
}

// Unregister removes a mode. Returns false if it was not registered.
func (r *Registry) Unregister(mode model.PersistenceMode) bool {
	if _, ok := r.defs[mode]; !ok {
		return false
	}
	delete(r.defs, mode)
	for i, m := range r.order {
		if m == mode {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether mode is registered.
func (r *Registry) Has(mode model.PersistenceMode) bool {
	_, ok := r.defs[mode]
	return ok
}

// Modes returns registered modes in registration order.
func (r *Registry) Modes() []model.PersistenceMode {
	return append([]model.PersistenceMode(nil), r.order...)
}

// Describe returns the description of mode.
func (r *Registry) Describe(mode model.PersistenceMode) (string, bool) {
	def, ok := r.defs[mode]
	return def.Description, ok
}

// Descriptions returns every registered description.
func (r *Registry) Descriptions() map[model.PersistenceMode]string {
	out := make(map[model.PersistenceMode]string, len(r.defs))
	for m, def := range r.defs {
		out[m] = def.Description
	}
	return out
}

// IsUnlocked reports whether mode is registered and unlocked by p.
func (r *Registry) IsUnlocked(mode model.PersistenceMode, p unlock.Provider) bool {
	if !r.Has(mode) {
		return false
	}
	return p == nil || p.ModeUnlocked(mode)
}

// ShouldSwitch applies the preconditions, then the mode's policy.
func (r *Registry) ShouldSwitch(mode model.PersistenceMode, d Decision) (bool, error) {
	def, ok := r.defs[mode]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if result, decided := Preconditions(d); decided {
		return result, nil
	}
	return def.Policy(d), nil
}
