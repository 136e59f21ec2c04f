package analysis

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"aasha-server/internal/models"
)

// Placeholder is a non-clinical stand-in scorer: it draws a weighted random
// risk level and returns canned advice. It has no predictive value.
type Placeholder struct {
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// PlaceholderOptions tunes the placeholder scorer.
type PlaceholderOptions struct {
	// Delay simulates model latency; it is cut short by ctx cancellation.
	Delay time.Duration
	// Seed makes draws reproducible when non-zero.
	Seed uint64
}

// NewPlaceholder returns the placeholder scorer.
func NewPlaceholder(opts PlaceholderOptions) *Placeholder {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Placeholder{
		delay: opts.Delay,
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Classify implements Analyzer.
func (p *Placeholder) Classify(ctx context.Context, module models.ModuleType, _ Input) (Result, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	p.mu.Lock()
	draw, confidence := p.rng.Float64(), 75+p.rng.IntN(20)
	p.mu.Unlock()

	risk := models.RiskHigh
	switch {
	case draw < 0.5:
		risk = models.RiskLow
	case draw < 0.85:
		risk = models.RiskMedium
	}

	return Result{
		RiskLevel:      risk,
		Confidence:     confidence,
		Recommendation: Recommendation(risk, module),
	}, nil
}

var recommendations = map[models.RiskLevel]map[models.ModuleType]string{
	models.RiskLow: {
		models.ModuleTB:       "No TB indicators detected. Continue monitoring, maintain good ventilation.",
		models.ModuleSkin:     "Skin appears healthy. Continue hygiene practices.",
		models.ModuleAnemia:   "Pallor levels normal. Encourage iron-rich foods.",
		models.ModuleMaternal: "Pregnancy appears normal. Continue regular checkups.",
		models.ModuleTriage:   "Minor symptoms. Rest and home remedies recommended.",
	},
	models.RiskMedium: {
		models.ModuleTB:       "Some indicators present. Visit PHC for sputum test.",
		models.ModuleSkin:     "Possible skin condition. Recommend PHC visit.",
		models.ModuleAnemia:   "Mild pallor detected. Blood test recommended.",
		models.ModuleMaternal: "Warning signs present. PHC visit within 24-48 hours.",
		models.ModuleTriage:   "Moderate symptoms. Visit PHC within 24 hours.",
	},
	models.RiskHigh: {
		models.ModuleTB:       "High TB risk. Urgent referral for chest X-ray and testing.",
		models.ModuleSkin:     "Significant skin condition. Dermatology referral needed.",
		models.ModuleAnemia:   "Severe pallor. Urgent blood test required.",
		models.ModuleMaternal: "DANGER SIGNS. Immediate hospital transport needed.",
		models.ModuleTriage:   "URGENT: Serious symptoms. Immediate medical attention.",
	},
}

// Recommendation returns the standard advice text for a risk level and module.
func Recommendation(risk models.RiskLevel, module models.ModuleType) string {
	return recommendations[risk][module]
}
