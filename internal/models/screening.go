package models

import "strings"

// ModuleType identifies one of the screening modules.
type ModuleType string

const (
	ModuleTB       ModuleType = "tb"
	ModuleSkin     ModuleType = "skin"
	ModuleAnemia   ModuleType = "anemia"
	ModuleMaternal ModuleType = "maternal"
	ModuleTriage   ModuleType = "triage"
)

// ParseModuleType reports whether s names a known module.
func ParseModuleType(s string) (ModuleType, bool) {
	m := ModuleType(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModuleTB, ModuleSkin, ModuleAnemia, ModuleMaternal, ModuleTriage:
		return m, true
	}
	return "", false
}

// RiskLevel is the ordinal outcome of a screening: low < medium < high.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the three risk levels.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// NeedsReferral reports whether the result should be sent to a PHC.
func (r RiskLevel) NeedsReferral() bool {
	return r == RiskMedium || r == RiskHigh
}

// Screening is one completed analysis run. Screenings are written once and
// never updated.
type Screening struct {
	BaseModel
	// PatientID is not a foreign key; a screening may be recorded before a
	// patient is selected.
	PatientID      string     `gorm:"size:36;index" json:"patientId,omitempty"`
	ModuleType     ModuleType `gorm:"size:20" json:"moduleType"`
	RiskLevel      RiskLevel  `gorm:"size:10;index" json:"riskLevel"`
	Confidence     int        `json:"confidence"`
	Recommendation string     `gorm:"type:text" json:"recommendation"`
}
