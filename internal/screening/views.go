package screening

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"aasha-server/internal/models"
)

// Filter selects patients by the risk level of their latest screening.
type Filter string

// FilterAll matches every patient, screened or not.
const FilterAll Filter = "all"

// ParseFilter accepts "all" (or empty) and the three risk levels.
func ParseFilter(s string) (Filter, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); {
	case v == "" || v == string(FilterAll):
		return FilterAll, nil
	case models.RiskLevel(v).Valid():
		return Filter(v), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// PatientSummary is a patient together with their latest screening, if any.
type PatientSummary struct {
	models.Patient
	LatestScreening *models.Screening `json:"latestScreening,omitempty"`
}

// Stats are the dashboard counters.
type Stats struct {
	TodayCount     int   `json:"todayCount"`
	TotalCount     int64 `json:"totalCount"`
	ScreeningCount int64 `json:"screeningCount"`
}

// ListPatients returns every patient for FilterAll, otherwise the patients
// whose latest screening has the filter's risk level. Patients never
// screened only appear under FilterAll. Newest registrations come first.
func (s *Service) ListPatients(ctx context.Context, filter Filter) ([]models.Patient, error) {
	patients, err := s.store.GetAllPatients(ctx)
	if err != nil {
		return nil, err
	}
	if filter != FilterAll {
		if !models.RiskLevel(filter).Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
		}
		latest, err := s.store.LatestScreenings(ctx)
		if err != nil {
			return nil, err
		}
		patients = slices.DeleteFunc(patients, func(p models.Patient) bool {
			sc, ok := latest[p.ID]
			return !ok || sc.RiskLevel != models.RiskLevel(filter)
		})
	}
	sortNewestFirst(patients)
	return patients, nil
}

// SearchPatients returns the patients whose name contains query, ignoring
// case. An empty query matches everyone.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]models.Patient, error) {
	patients, err := s.store.GetAllPatients(ctx)
	if err != nil {
		return nil, err
	}
	patients = matchName(patients, query)
	sortNewestFirst(patients)
	return patients, nil
}

// FindPatients applies the risk filter and then the name search.
func (s *Service) FindPatients(ctx context.Context, filter Filter, query string) ([]models.Patient, error) {
	patients, err := s.ListPatients(ctx, filter)
	if err != nil {
		return nil, err
	}
	return matchName(patients, query), nil
}

func matchName(patients []models.Patient, query string) []models.Patient {
	if query == "" {
		return patients
	}
	needle := strings.ToLower(query)
	return slices.DeleteFunc(patients, func(p models.Patient) bool {
		return !strings.Contains(strings.ToLower(p.Name), needle)
	})
}

// DashboardStats counts today's registrations, all patients and all
// screenings.
func (s *Service) DashboardStats(ctx context.Context) (Stats, error) {
	today, err := s.store.GetTodayPatients(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, err := s.store.Patients.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	screenings, err := s.store.Screenings.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TodayCount: len(today), TotalCount: total, ScreeningCount: screenings}, nil
}

// Summaries attaches each patient's latest screening and orders the result
// newest registration first.
func (s *Service) Summaries(ctx context.Context, patients []models.Patient) ([]PatientSummary, error) {
	latest, err := s.store.LatestScreenings(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]PatientSummary, 0, len(patients))
	for _, p := range patients {
		summary := PatientSummary{Patient: p}
		if sc, ok := latest[p.ID]; ok {
			summary.LatestScreening = &sc
		}
		summaries = append(summaries, summary)
	}
	slices.SortStableFunc(summaries, func(a, b PatientSummary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return summaries, nil
}

// History is every patient with their latest screening, newest first.
func (s *Service) History(ctx context.Context) ([]PatientSummary, error) {
	patients, err := s.store.GetAllPatients(ctx)
	if err != nil {
		return nil, err
	}
	return s.Summaries(ctx, patients)
}

// PatientScreenings returns a patient's screenings, most recent first.
func (s *Service) PatientScreenings(ctx context.Context, patientID string) ([]models.Screening, error) {
	screenings, err := s.store.GetPatientScreenings(ctx, patientID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(screenings, func(a, b models.Screening) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return screenings, nil
}

func sortNewestFirst(patients []models.Patient) {
	slices.SortStableFunc(patients, func(a, b models.Patient) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
