package workflow

import (
	"context"
	"sync"

	"github.com/radarhq/compass"
)

// EditSession tracks the status fields of one solution through an edit.
// It owns the displayed value of each tracked field, the staged changes,
// and each field's place in the change state machine.
type EditSession struct {
	mu       sync.Mutex
	slug     string
	original map[compass.TrackedField]string
	current  map[compass.TrackedField]string
	pending  map[compass.TrackedField]*PendingChange
	states   map[compass.TrackedField]ChangeState
	prompter Prompter
	log      compass.Logger
}

// EditOption customizes an edit session.
type EditOption func(*EditSession)

func WithLogger(l compass.Logger) EditOption {
	return func(s *EditSession) {
		if l != nil {
			s.log = l
		}
	}
}

// NewEditSession opens an edit over the given solution's tracked fields.
func NewEditSession(solution *compass.Solution, prompter Prompter, opts ...EditOption) *EditSession {
	s := &EditSession{
		slug:     solution.Slug,
		original: map[compass.TrackedField]string{},
		current:  map[compass.TrackedField]string{},
		pending:  map[compass.TrackedField]*PendingChange{},
		states:   map[compass.TrackedField]ChangeState{},
		prompter: prompter,
		log:      compass.DefaultLogger(),
	}
	for _, field := range compass.TrackedFields() {
		value, _ := compass.TrackedValue(solution, field)
		s.original[field] = value
		s.current[field] = value
		s.states[field] = StateUnchanged
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Slug returns the solution this session edits.
func (s *EditSession) Slug() string { return s.slug }

// Value returns the displayed value of a tracked field: the staged new
// value when a change is pending, otherwise the value from the start of
// the edit.
func (s *EditSession) Value(field compass.TrackedField) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current[field]
}

// State returns the field's position in the change lifecycle.
func (s *EditSession) State(field compass.TrackedField) ChangeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[field]
}

// HasPending reports whether any field has a staged change.
func (s *EditSession) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// Changes returns the staged changes in canonical field order, shaped the
// way history records carry them.
func (s *EditSession) Changes() []compass.ChangedField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changesLocked()
}

func (s *EditSession) changesLocked() []compass.ChangedField {
	var out []compass.ChangedField
	for _, field := range compass.TrackedFields() {
		pc, ok := s.pending[field]
		if !ok {
			continue
		}
		out = append(out, compass.ChangedField{
			FieldName:     string(pc.Field),
			OldValue:      pc.OldValue,
			NewValue:      pc.NewValue,
			Justification: pc.Justification,
		})
	}
	return out
}

// Justifications returns the staged justifications keyed by field name,
// the shape the justification header carries.
func (s *EditSession) Justifications() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.pending))
	for field, pc := range s.pending {
		out[string(field)] = pc.Justification
	}
	return out
}

// ProposeChange asks to move field to newValue. Setting a field back to
// the value it held at the start of the edit drops any staged change
// without prompting. Any other value prompts for a justification: a blank
// justification re-prompts, a cancelled prompt returns ErrChangeCancelled
// and leaves the displayed value where it was. A confirmed proposal stages
// a change whose old value is always the start-of-edit value, so chained
// changes net out to one diff carrying the latest justification.
func (s *EditSession) ProposeChange(ctx context.Context, field compass.TrackedField, newValue string) error {
	if !compass.IsTrackedField(string(field)) {
		return compass.ErrInvalidStatusValue.WithMetadata(map[string]any{
			"field": string(field),
		})
	}
	if !compass.ValidTrackedValue(field, newValue) {
		return compass.ErrInvalidStatusValue.WithMetadata(map[string]any{
			"field": string(field),
			"value": newValue,
		})
	}

	s.mu.Lock()
	displayed := s.current[field]
	baseline := s.original[field]
	state := s.states[field]
	s.mu.Unlock()

	if newValue == displayed {
		return nil
	}

	// Returning to the start-of-edit value undoes the staged change.
	if newValue == baseline {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !canTransition(s.states[field], StateUnchanged) {
			return ErrInvalidTransition.WithMetadata(map[string]any{
				"field": string(field),
				"from":  string(s.states[field]),
				"to":    string(StateUnchanged),
			})
		}
		delete(s.pending, field)
		s.current[field] = baseline
		s.states[field] = StateUnchanged
		return nil
	}

	if !canTransition(state, StatePendingJustification) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"field": string(field),
			"from":  string(state),
			"to":    string(StatePendingJustification),
		})
	}

	justification, err := s.promptJustification(ctx, field, displayed, newValue)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[field] = &PendingChange{
		Field:         field,
		OldValue:      baseline,
		NewValue:      newValue,
		Justification: justification,
	}
	s.current[field] = newValue
	s.states[field] = StatePendingJustification
	return nil
}

// promptJustification runs the prompt loop: blank answers re-prompt,
// cancellation surfaces as ErrChangeCancelled.
func (s *EditSession) promptJustification(ctx context.Context, field compass.TrackedField, oldValue, newValue string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		justification, err := s.prompter.JustifyChange(ctx, field, oldValue, newValue)
		if err != nil {
			if IsCancelled(err) {
				s.log.Debug("workflow: change to %s cancelled for %s", newValue, field)
			}
			return "", err
		}
		if !blankJustification(justification) {
			return justification, nil
		}
		s.log.Debug("workflow: blank justification for %s, asking again", field)
	}
}

// Commit persists the staged changes. On success every staged field moves
// to Committed and the committed values become the new start-of-edit
// baseline. On failure the staged changes are retained so the user can
// retry or keep editing.
func (s *EditSession) Commit(ctx context.Context, committer Committer) error {
	s.mu.Lock()
	changes := s.changesLocked()
	s.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}

	if err := committer.CommitStatusChanges(ctx, s.slug, changes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for field := range s.pending {
		s.original[field] = s.current[field]
		s.states[field] = StateCommitted
		delete(s.pending, field)
	}
	return nil
}
