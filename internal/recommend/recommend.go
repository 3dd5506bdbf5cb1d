// Package recommend maps a diagnosis to actionable agronomy advice. It is a
// pluggable, failure-tolerant collaborator of the pipeline: callers wrap it
// so a lookup failure degrades to generic advice instead of aborting the
// analysis.
package recommend

import "fmt"

// Confidence qualifies how much to trust the diagnosis the advice is for.
type Confidence struct {
	Score float64 `json:"score"`
	Level string  `json:"level"`
	Note  string  `json:"note"`
}

// Advice is the structured guidance for one diagnosis.
type Advice struct {
	Disease         string     `json:"disease"`
	PlantPart       string     `json:"plant_part"`
	Confidence      Confidence `json:"confidence"`
	Description     string     `json:"description"`
	CausalAgent     string     `json:"causal_agent,omitempty"`
	Immediate       []string   `json:"immediate_actions"`
	Prevention      []string   `json:"preventive_measures"`
	Organic         []string   `json:"organic_options,omitempty"`
	Chemical        []string   `json:"chemical_options,omitempty"`
	Monitoring      string     `json:"monitoring_tips,omitempty"`
	WhenToSeekHelp  []string   `json:"when_to_seek_help"`
	Reassessment    string     `json:"reassessment_timeframe"`
}

// Provider is the lookup contract the pipeline consumes.
type Provider func(part, disease string, confidence float64) (Advice, error)

// Get returns advice for the given part and disease, falling back to generic
// guidance when the pair is not in the database.
func Get(part, disease string, confidence float64) (Advice, error) {
	entry, ok := database[part][disease]
	if !ok {
		entry = fallbackEntry
	}

	advice := Advice{
		Disease:        disease,
		PlantPart:      part,
		Confidence:     qualify(confidence),
		Description:    entry.description,
		CausalAgent:    entry.causalAgent,
		Immediate:      entry.immediate,
		Prevention:     entry.prevention,
		Organic:        entry.organic,
		Chemical:       entry.chemical,
		Monitoring:     entry.monitoring,
		WhenToSeekHelp: whenToConsult,
		Reassessment:   "Reassess in 5-7 days after treatment",
	}
	return advice, nil
}

func qualify(confidence float64) Confidence {
	switch {
	case confidence > 0.85:
		return Confidence{
			Score: confidence,
			Level: "high",
			Note:  fmt.Sprintf("High confidence diagnosis (%.1f%%) - proceed with recommended treatments", confidence*100),
		}
	case confidence > 0.65:
		return Confidence{
			Score: confidence,
			Level: "moderate",
			Note:  fmt.Sprintf("Moderate confidence (%.1f%%) - monitor closely and consider differential diagnosis", confidence*100),
		}
	default:
		return Confidence{
			Score: confidence,
			Level: "low",
			Note:  fmt.Sprintf("Low confidence (%.1f%%) - verify diagnosis with additional photos or expert consultation", confidence*100),
		}
	}
}

var whenToConsult = []string{
	"Symptoms worsen within 3-5 days",
	"Multiple plants show similar symptoms",
	"Previous treatments are ineffective",
	"For commercial crops: consult agricultural extension immediately",
}
