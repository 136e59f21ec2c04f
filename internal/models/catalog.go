package models

// InputKind describes what a module collects before analysis.
type InputKind string

const (
	InputAudio         InputKind = "audio"
	InputImage         InputKind = "image"
	InputQuestionnaire InputKind = "questionnaire"
	InputSymptoms      InputKind = "symptoms"
)

// Module describes a screening module as presented to the health worker.
type Module struct {
	ID          ModuleType `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Input       InputKind  `json:"input"`
}

// Modules lists the screening modules in display order.
var Modules = []Module{
	{ID: ModuleTB, Name: "TB Screening", Description: "Cough-based detection", Input: InputAudio},
	{ID: ModuleSkin, Name: "Skin Disease", Description: "Photo detection", Input: InputImage},
	{ID: ModuleAnemia, Name: "Anemia Check", Description: "Palm/Eye analysis", Input: InputImage},
	{ID: ModuleMaternal, Name: "Maternal Health", Description: "Pregnancy screening", Input: InputQuestionnaire},
	{ID: ModuleTriage, Name: "Symptom Triage", Description: "General health", Input: InputSymptoms},
}

// LookupModule returns the catalog entry for id.
func LookupModule(id ModuleType) (Module, bool) {
	for _, m := range Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// IntakeSymptoms is the fixed catalog offered on the registration form.
var IntakeSymptoms = []string{
	"Cough > 2 weeks",
	"Fever",
	"Night sweats",
	"Weight loss",
	"Fatigue",
	"Breathlessness",
	"Chest pain",
	"Loss of appetite",
}

// Severity grades a maternal warning sign.
type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// WarningSign is one yes/no question of the maternal questionnaire.
type WarningSign struct {
	Key      string   `json:"key"`
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// MaternalWarningSigns is the maternal questionnaire.
var MaternalWarningSigns = []WarningSign{
	{Key: "highBP", Text: "High blood pressure / dizziness?", Severity: SeverityHigh},
	{Key: "bleeding", Text: "Vaginal bleeding?", Severity: SeverityCritical},
	{Key: "swelling", Text: "Swelling in hands/feet/face?", Severity: SeverityMedium},
	{Key: "headache", Text: "Severe headache / blurred vision?", Severity: SeverityHigh},
	{Key: "movement", Text: "Reduced baby movement?", Severity: SeverityHigh},
	{Key: "weakness", Text: "Extreme weakness?", Severity: SeverityMedium},
	{Key: "fever", Text: "Fever or chills?", Severity: SeverityMedium},
	{Key: "convulsions", Text: "Convulsions or fits?", Severity: SeverityCritical},
}

// TriageCategory groups triage symptoms for display.
type TriageCategory struct {
	Name     string   `json:"name"`
	Symptoms []string `json:"symptoms"`
}

// TriageCategories is the symptom triage catalog.
var TriageCategories = []TriageCategory{
	{Name: "Respiratory", Symptoms: []string{"Difficulty breathing", "Persistent cough", "Chest pain", "Wheezing"}},
	{Name: "General", Symptoms: []string{"High fever (>102°F)", "Severe headache", "Body aches", "Fatigue"}},
	{Name: "Digestive", Symptoms: []string{"Severe diarrhea", "Vomiting", "Abdominal pain", "Blood in stool"}},
	{Name: "Child Health", Symptoms: []string{"Not eating/drinking", "Lethargy", "Rash with fever", "Convulsions"}},
}

// IsIntakeSymptom reports whether s is in the registration catalog.
func IsIntakeSymptom(s string) bool {
	for _, known := range IntakeSymptoms {
		if known == s {
			return true
		}
	}
	return false
}

// IsWarningSign reports whether key names a maternal question.
func IsWarningSign(key string) bool {
	for _, q := range MaternalWarningSigns {
		if q.Key == key {
			return true
		}
	}
	return false
}

// IsTriageSymptom reports whether s is listed in any triage category.
func IsTriageSymptom(s string) bool {
	for _, cat := range TriageCategories {
		for _, known := range cat.Symptoms {
			if known == s {
				return true
			}
		}
	}
	return false
}
