package screening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aasha-server/internal/models"
)

// State is the workflow position of a session.
type State string

const (
	StateIdle             State = "idle"
	StatePatientSelected  State = "patient_selected"
	StateModuleInProgress State = "module_in_progress"
	StateResultReady      State = "result_ready"
)

// Session is the transient selection state of one screening sequence: the
// current patient, the current module and the last outcome. It is never
// persisted; returning to Idle clears it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	state   State
	patient *models.Patient
	module  models.ModuleType
	outcome *Outcome

	// epoch changes whenever the selection changes, so an analysis that
	// finishes late can tell its module was left.
	epoch  uint64
	cancel context.CancelFunc
}

// NewSession returns an idle session.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, state: StateIdle}
}

// Snapshot is a copy of a session's state safe to hand to callers.
type Snapshot struct {
	ID      string            `json:"id"`
	State   State             `json:"state"`
	Patient *models.Patient   `json:"patient,omitempty"`
	Module  models.ModuleType `json:"module,omitempty"`
	Outcome *Outcome          `json:"outcome,omitempty"`
}

// Snapshot returns the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{ID: s.ID, State: s.state, Module: s.module}
	if s.patient != nil {
		p := *s.patient
		snap.Patient = &p
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	return snap
}

// State returns the session's workflow state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) reset() {
	s.stopAnalysis()
	s.state = StateIdle
	s.patient = nil
	s.module = ""
	s.outcome = nil
}

func (s *Session) selectPatient(p models.Patient) error {
	if err := canSelectPatient(s.state); err != nil {
		return err
	}
	s.stopAnalysis()
	s.patient = &p
	s.module = ""
	s.outcome = nil
	s.state = StatePatientSelected
	return nil
}

func (s *Session) selectModule(m models.ModuleType) error {
	switch s.state {
	case StateIdle, StatePatientSelected, StateModuleInProgress:
	default:
		return fmt.Errorf("%w: cannot choose a module while %s", ErrInvalidTransition, s.state)
	}
	s.stopAnalysis()
	s.module = m
	s.state = StateModuleInProgress
	return nil
}

func (s *Session) moduleInProgress(m models.ModuleType) error {
	if s.state != StateModuleInProgress {
		return fmt.Errorf("%w: no module in progress (%s)", ErrInvalidTransition, s.state)
	}
	if m != s.module {
		return fmt.Errorf("%w: %s is in progress, got %s", ErrModuleMismatch, s.module, m)
	}
	if s.cancel != nil {
		return fmt.Errorf("%w: an analysis is running", ErrInvalidTransition)
	}
	return nil
}

// beginAnalysis registers the cancel func of a running analysis and returns
// the epoch it belongs to.
func (s *Session) beginAnalysis(cancel context.CancelFunc) (uint64, error) {
	if s.cancel != nil {
		return 0, fmt.Errorf("%w: an analysis is already running", ErrInvalidTransition)
	}
	s.cancel = cancel
	return s.epoch, nil
}

// endAnalysis reports whether the session is still on the analysis' epoch.
func (s *Session) endAnalysis(epoch uint64) bool {
	if s.epoch != epoch {
		return false
	}
	s.cancel = nil
	return true
}

func (s *Session) stopAnalysis() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
}

func (s *Session) patientID() string {
	if s.patient == nil {
		return ""
	}
	return s.patient.ID
}
