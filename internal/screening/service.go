package screening

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aasha-server/internal/analysis"
	"aasha-server/internal/metrics"
	"aasha-server/internal/models"
	"aasha-server/internal/store"
)

// SettingPHC is the settings key holding the referral health center shown
// with medium and high risk results.
const SettingPHC = "phc.info"

// PHCInfo describes the Primary Health Center patients are referred to.
type PHCInfo struct {
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
}

// Outcome is what the health worker sees after an analysis completes.
type Outcome struct {
	Screening  models.Screening `json:"screening"`
	ReferToPHC bool             `json:"referToPhc"`
	PHC        *PHCInfo         `json:"phc,omitempty"`
}

// Intake is the registration form as submitted.
type Intake struct {
	Name     string
	Age      int
	Gender   string
	Phone    string
	Village  string
	Symptoms []string
}

// Options configures a Service.
type Options struct {
	// AnalysisTimeout bounds one Classify call; zero means no bound beyond
	// the caller's context.
	AnalysisTimeout time.Duration
	// MaxCaptureBytes caps audio and image payloads; zero disables the cap.
	MaxCaptureBytes int64
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
}

// Service sequences patient intake, module execution and result recording.
// Every operation takes the Session it acts on.
type Service struct {
	store           *store.Store
	analyzer        analysis.Analyzer
	metrics         *metrics.Metrics
	log             *zap.Logger
	analysisTimeout time.Duration
	maxCaptureBytes int64
}

// NewService creates a new Service.
func NewService(st *store.Store, analyzer analysis.Analyzer, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:           st,
		analyzer:        analyzer,
		metrics:         opts.Metrics,
		log:             log,
		analysisTimeout: opts.AnalysisTimeout,
		maxCaptureBytes: opts.MaxCaptureBytes,
	}
}

// RegisterPatient persists a patient built from the intake form and makes
// it the session's current patient. Fields are stored as given.
func (s *Service) RegisterPatient(ctx context.Context, sess *Session, in Intake) (models.Patient, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := canSelectPatient(sess.state); err != nil {
		return models.Patient{}, err
	}

	symptoms := make([]string, len(in.Symptoms))
	copy(symptoms, in.Symptoms)
	patient := models.Patient{
		Name:     in.Name,
		Age:      in.Age,
		Gender:   in.Gender,
		Phone:    in.Phone,
		Village:  in.Village,
		Symptoms: symptoms,
	}
	if err := s.store.SavePatient(ctx, &patient); err != nil {
		return models.Patient{}, fmt.Errorf("failed to save patient: %w", err)
	}
	s.metrics.IncrementPatientsRegistered()
	s.log.Info("patient registered", zap.String("session", sess.ID), zap.String("patient", patient.ID))

	if err := sess.selectPatient(patient); err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

// SelectPatient makes an already registered patient current, for a repeat
// screening.
func (s *Service) SelectPatient(ctx context.Context, sess *Session, patientID string) (models.Patient, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := canSelectPatient(sess.state); err != nil {
		return models.Patient{}, err
	}
	patient, ok, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return models.Patient{}, err
	}
	if !ok {
		return models.Patient{}, fmt.Errorf("%w: %s", ErrPatientNotFound, patientID)
	}
	if err := sess.selectPatient(patient); err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

func canSelectPatient(state State) error {
	switch state {
	case StateIdle, StatePatientSelected, StateModuleInProgress:
		return nil
	}
	return fmt.Errorf("%w: cannot select a patient while %s", ErrInvalidTransition, state)
}

// SelectModule sets the session's current module. An unrecognized module id
// is a no-op and reports false.
func (s *Service) SelectModule(sess *Session, moduleID string) (bool, error) {
	module, ok := models.ParseModuleType(moduleID)
	if !ok {
		s.log.Debug("ignoring unknown module", zap.String("session", sess.ID), zap.String("module", moduleID))
		return false, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.selectModule(module); err != nil {
		return false, err
	}
	return true, nil
}

// Analyze checks the module input, runs the analysis capability and records
// the result. On any analysis failure nothing is persisted and the session
// stays on its module so the worker can retry or abandon. The session is not
// locked while the scorer runs; leaving the module cancels the analysis and
// its result is discarded with ErrAnalysisAbandoned.
func (s *Service) Analyze(ctx context.Context, sess *Session, in analysis.Input) (Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	module, epoch, err := s.beginAnalysis(sess, in, cancel)
	if err != nil {
		return Outcome{}, err
	}

	result, err := s.classify(ctx, module, in)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.endAnalysis(epoch) {
		s.log.Info("analysis discarded", zap.String("session", sess.ID), zap.String("module", string(module)))
		return Outcome{}, fmt.Errorf("%w: %s", ErrAnalysisAbandoned, module)
	}
	if err != nil {
		s.log.Warn("analysis failed",
			zap.String("session", sess.ID),
			zap.String("module", string(module)),
			zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return s.complete(ctx, sess, module, result)
}

func (s *Service) beginAnalysis(sess *Session, in analysis.Input, cancel context.CancelFunc) (models.ModuleType, uint64, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != StateModuleInProgress {
		return "", 0, fmt.Errorf("%w: no module in progress (%s)", ErrInvalidTransition, sess.state)
	}
	if err := analysis.CheckInput(sess.module, in, s.maxCaptureBytes); err != nil {
		return "", 0, err
	}
	epoch, err := sess.beginAnalysis(cancel)
	if err != nil {
		return "", 0, err
	}
	return sess.module, epoch, nil
}

func (s *Service) classify(ctx context.Context, module models.ModuleType, in analysis.Input) (analysis.Result, error) {
	if s.analysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.analysisTimeout)
		defer cancel()
	}

	started := time.Now()
	result, err := s.analyzer.Classify(ctx, module, in)
	if err == nil {
		err = result.Validate()
	}
	s.metrics.RecordAnalysis(string(module), time.Since(started), err)
	return result, err
}

// CompleteAnalysis records a result produced by the analysis capability for
// the module in progress and moves the session to ResultReady. The screening
// is linked to the current patient when there is one.
func (s *Service) CompleteAnalysis(ctx context.Context, sess *Session, module models.ModuleType, result analysis.Result) (Outcome, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.moduleInProgress(module); err != nil {
		return Outcome{}, err
	}
	if err := result.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return s.complete(ctx, sess, module, result)
}

func (s *Service) complete(ctx context.Context, sess *Session, module models.ModuleType, result analysis.Result) (Outcome, error) {
	screening := models.Screening{
		PatientID:      sess.patientID(),
		ModuleType:     module,
		RiskLevel:      result.RiskLevel,
		Confidence:     result.Confidence,
		Recommendation: result.Recommendation,
	}
	if err := s.store.SaveScreening(ctx, &screening); err != nil {
		return Outcome{}, fmt.Errorf("failed to save screening: %w", err)
	}
	s.metrics.RecordScreening(string(module), string(result.RiskLevel))
	s.log.Info("screening recorded",
		zap.String("session", sess.ID),
		zap.String("screening", screening.ID),
		zap.String("patient", screening.PatientID),
		zap.String("module", string(module)),
		zap.String("risk", string(result.RiskLevel)))

	outcome := Outcome{Screening: screening, ReferToPHC: result.RiskLevel.NeedsReferral()}
	if outcome.ReferToPHC {
		var phc PHCInfo
		ok, err := s.store.GetSetting(ctx, SettingPHC, &phc)
		switch {
		case err != nil:
			// The screening is already committed; the referral card is optional.
			s.log.Warn("failed to load PHC details", zap.Error(err))
		case ok:
			outcome.PHC = &phc
		}
	}

	sess.outcome = &outcome
	sess.state = StateResultReady
	return outcome, nil
}

// Acknowledge closes a shown result and returns the session to Idle.
func (s *Service) Acknowledge(sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != StateResultReady {
		return fmt.Errorf("%w: no result to acknowledge (%s)", ErrInvalidTransition, sess.state)
	}
	sess.reset()
	return nil
}

// Abandon returns the session to Idle from any state. Records already saved
// stay saved.
func (s *Service) Abandon(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.reset()
}
