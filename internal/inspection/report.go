// internal/inspection/report.go
package inspection

import (
	"fmt"

	"github.com/qc-advancedmedic/nui/pkg/core"
)

// Report is the detailed examination result of one body part.
type Report struct {
	BoneIntegrity    string `json:"boneIntegrity"`
	SoftTissue       string `json:"softTissue"`
	BloodFlow        string `json:"bloodFlow"`
	PainResponse     string `json:"painResponse"`
	Swelling         string `json:"swelling"`
	Discoloration    string `json:"discoloration"`
	WoundDescription string `json:"woundDescription"`
	Recommendation   string `json:"recommendation"`
	Urgency          string `json:"urgency,omitempty"`
}

// NoWoundReport is shown for a body part without any wound.
var NoWoundReport = Report{
	BoneIntegrity:    "Normal",
	SoftTissue:       "No visible damage",
	BloodFlow:        "Normal circulation",
	PainResponse:     "No significant pain response",
	Swelling:         "None detected",
	Discoloration:    "Normal skin tone",
	WoundDescription: "No wounds detected in this area",
	Recommendation:   "No immediate treatment required",
}

// BuildReport examines a wound. A nil wound yields NoWoundReport.
func BuildReport(w *core.Wound, states core.InjuryStates) Report {
	if w == nil {
		return NoWoundReport
	}
	if w.IsScar {
		return scarReport(w)
	}

	pain, bleeding := w.PainLevel, w.BleedingLevel
	painDesc := painDescription(pain, states)
	bleedDesc := bleedingDescription(bleeding, states)
	score := w.Score()

	r := Report{
		BoneIntegrity:    "Normal",
		SoftTissue:       "No visible damage",
		BloodFlow:        "Normal circulation",
		PainResponse:     "No significant pain response",
		Swelling:         "None detected",
		Discoloration:    "Normal skin tone",
		WoundDescription: w.Metadata.Description,
		Recommendation:   Recommendation(pain, bleeding, states),
		Urgency:          Urgency(pain, bleeding, states),
	}

	switch {
	case pain > 8:
		r.BoneIntegrity = "Possible fracture detected"
	case pain > 5:
		r.BoneIntegrity = "Bone bruising suspected"
	}

	switch {
	case bleeding > 0:
		r.SoftTissue = bleedDesc
	case pain > 0:
		r.SoftTissue = fmt.Sprintf("Contusions present (%s)", painDesc)
	}

	switch {
	case bleeding > 6:
		r.BloodFlow = "Active bleeding: " + bleedDesc
	case bleeding > 0:
		r.BloodFlow = bleedDesc + " observed"
	}

	if pain > 0 {
		r.PainResponse = "Patient reports: " + painDesc
	}

	switch {
	case score > 12:
		r.Swelling = "Significant swelling present"
	case score > 6:
		r.Swelling = "Minor swelling detected"
	}

	switch {
	case bleeding > 3:
		r.Discoloration = "Blood pooling visible"
	case pain > 5:
		r.Discoloration = "Bruising and discoloration"
	}

	if r.WoundDescription == "" {
		r.WoundDescription = "No detailed wound description available"
	}
	return r
}

func scarReport(w *core.Wound) Report {
	desc := w.Metadata.Description
	if desc == "" {
		desc = "Unknown injury"
	}
	return Report{
		BoneIntegrity:    "Healed - Scar tissue formed",
		SoftTissue:       "Scar tissue present from previous injury",
		BloodFlow:        "Normal circulation restored",
		PainResponse:     "No active pain - fully healed",
		Swelling:         "None - injury has healed",
		Discoloration:    "Permanent scar tissue visible",
		WoundDescription: "OLD HEALED INJURY: " + desc,
		Recommendation:   "No treatment required - wound has fully healed into scar tissue",
	}
}

func painDescription(level int, states core.InjuryStates) string {
	if level == 0 {
		return "No pain"
	}
	if st, ok := states.Lookup(level); ok && st.Pain != "" {
		return st.Pain
	}
	return fmt.Sprintf("Pain level %d", level)
}

func bleedingDescription(level int, states core.InjuryStates) string {
	if level == 0 {
		return "No bleeding"
	}
	if st, ok := states.Lookup(level); ok && st.Bleeding != "" {
		return st.Bleeding
	}
	return fmt.Sprintf("Bleeding level %d", level)
}

// Recommendation is the treatment advice for the given levels.
func Recommendation(pain, bleeding int, states core.InjuryStates) string {
	switch {
	case pain > 0 && bleeding > 0:
		if st, ok := states.Lookup(max(pain, bleeding)); ok && st.UnifiedDesc != "" {
			return st.UnifiedDesc
		}
		return "Combined pain and bleeding treatment needed"

	case bleeding > 0:
		if st, ok := states.Lookup(bleeding); ok && st.BleedDesc != "" {
			return st.BleedDesc
		}
		switch {
		case bleeding >= 8:
			return "URGENT: Control bleeding immediately - life threatening"
		case bleeding >= 6:
			return "Apply tourniquet or pressure bandage to stop bleeding"
		case bleeding >= 4:
			return "Apply bandage to control bleeding"
		}
		return "Monitor bleeding, apply basic bandage if needed"

	case pain > 0:
		if st, ok := states.Lookup(pain); ok && st.PainDesc != "" {
			return st.PainDesc
		}
		switch {
		case pain >= 8:
			return "URGENT: Severe pain management required - administer strong painkillers"
		case pain >= 6:
			return "Significant pain management needed - use pain medication"
		case pain >= 4:
			return "Apply pain relief measures - basic painkillers recommended"
		}
		return "Monitor discomfort, rest and basic pain relief if needed"
	}
	return "No immediate treatment required"
}

// Urgency grades the worse of the two levels. A configured state without an
// urgency grades as "unknown".
func Urgency(pain, bleeding int, states core.InjuryStates) string {
	level := max(pain, bleeding)
	if st, ok := states.Lookup(level); ok {
		if st.Urgency == "" {
			return "unknown"
		}
		return st.Urgency
	}
	switch {
	case level >= 8:
		return "critical"
	case level >= 6:
		return "high"
	case level >= 4:
		return "medium"
	case level >= 2:
		return "low"
	}
	return "very low"
}

// Assessment is the log line added when a wound is discovered. It grades by
// the host-side severity and blood loss scores.
func Assessment(w *core.Wound) string {
	switch {
	case w.Severity > 70:
		return "Critical injury detected - immediate attention required"
	case w.Severity > 40:
		return "Moderate injury found - treatment recommended"
	case w.Bleeding > 15:
		return "Active bleeding observed"
	}
	return "Minor injury noted"
}
