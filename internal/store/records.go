package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"aasha-server/internal/models"
)

// SavePatient assigns an id and createdAt when missing, stamps updatedAt and
// upserts the patient. createdAt of an existing record is never changed.
func (s *Store) SavePatient(ctx context.Context, p *models.Patient) error {
	if p.ID == "" {
		p.ID = models.NewID()
	} else if p.CreatedAt.IsZero() {
		existing, ok, err := s.Patients.Get(ctx, p.ID)
		if err != nil {
			return err
		}
		if ok {
			p.CreatedAt = existing.CreatedAt
		}
	}
	now := s.stamp()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.Patients.Put(ctx, p)
}

// GetPatient returns the patient with id, if any.
func (s *Store) GetPatient(ctx context.Context, id string) (models.Patient, bool, error) {
	return s.Patients.Get(ctx, id)
}

// GetAllPatients returns every registered patient.
func (s *Store) GetAllPatients(ctx context.Context) ([]models.Patient, error) {
	return s.Patients.GetAll(ctx)
}

// GetTodayPatients returns the patients registered on the current calendar
// day of the store clock.
func (s *Store) GetTodayPatients(ctx context.Context) ([]models.Patient, error) {
	start, end := dayBounds(s.now())

	var patients []models.Patient
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("get today patients: %w", err)
	}
	return patients, nil
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// SaveScreening assigns an id and createdAt when missing and upserts the
// screening.
func (s *Store) SaveScreening(ctx context.Context, sc *models.Screening) error {
	if sc.ID == "" {
		sc.ID = models.NewID()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = s.stamp()
	}
	return s.Screenings.Put(ctx, sc)
}

// GetScreening returns the screening with id, if any.
func (s *Store) GetScreening(ctx context.Context, id string) (models.Screening, bool, error) {
	return s.Screenings.Get(ctx, id)
}

// GetPatientScreenings returns every screening recorded for patientID.
func (s *Store) GetPatientScreenings(ctx context.Context, patientID string) ([]models.Screening, error) {
	return s.Screenings.Find(ctx, "patient_id", patientID)
}

// GetLatestScreening returns the patient's screening with the greatest
// createdAt, independent of insertion order.
func (s *Store) GetLatestScreening(ctx context.Context, patientID string) (models.Screening, bool, error) {
	screenings, err := s.GetPatientScreenings(ctx, patientID)
	if err != nil {
		return models.Screening{}, false, err
	}
	latest, ok := latestOf(screenings)
	return latest, ok, nil
}

// LatestScreenings returns the latest screening of every patient that has
// one, keyed by patient id, in a single scan.
func (s *Store) LatestScreenings(ctx context.Context) (map[string]models.Screening, error) {
	screenings, err := s.Screenings.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]models.Screening)
	for _, sc := range screenings {
		if sc.PatientID == "" {
			continue
		}
		if cur, ok := latest[sc.PatientID]; !ok || sc.CreatedAt.After(cur.CreatedAt) {
			latest[sc.PatientID] = sc
		}
	}
	return latest, nil
}

func latestOf(screenings []models.Screening) (models.Screening, bool) {
	if len(screenings) == 0 {
		return models.Screening{}, false
	}
	latest := screenings[0]
	for _, sc := range screenings[1:] {
		if sc.CreatedAt.After(latest.CreatedAt) {
			latest = sc
		}
	}
	return latest, true
}

// SaveSetting stores value as JSON under key.
func (s *Store) SaveSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}
	return s.Settings.Put(ctx, &models.Setting{Key: key, Value: datatypes.JSON(raw)})
}

// GetSetting decodes the value stored under key into dst. ok is false when
// the key has never been written.
func (s *Store) GetSetting(ctx context.Context, key string, dst any) (bool, error) {
	setting, ok, err := s.Settings.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(setting.Value, dst); err != nil {
		return false, fmt.Errorf("decode setting %q: %w", key, err)
	}
	return true, nil
}
