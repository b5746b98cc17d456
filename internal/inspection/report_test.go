package inspection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qc-advancedmedic/nui/pkg/core"
)

func TestBuildReport_NoWound(t *testing.T) {
	assert.Equal(t, NoWoundReport, BuildReport(nil, nil))
}

func TestBuildReport_Scar(t *testing.T) {
	r := BuildReport(&core.Wound{IsScar: true, PainLevel: 9, BleedingLevel: 9, Metadata: core.WoundMetadata{Description: "Gunshot wound"}}, nil)
	assert.Equal(t, "Healed - Scar tissue formed", r.BoneIntegrity)
	assert.Equal(t, "OLD HEALED INJURY: Gunshot wound", r.WoundDescription)
	assert.Equal(t, "No treatment required - wound has fully healed into scar tissue", r.Recommendation)

	r = BuildReport(&core.Wound{IsScar: true}, nil)
	assert.Equal(t, "OLD HEALED INJURY: Unknown injury", r.WoundDescription)
}

func TestBuildReport_Fallbacks(t *testing.T) {
	r := BuildReport(&core.Wound{PainLevel: 9, BleedingLevel: 7}, nil)

	assert.Equal(t, "Possible fracture detected", r.BoneIntegrity)
	assert.Equal(t, "Bleeding level 7", r.SoftTissue)
	assert.Equal(t, "Active bleeding: Bleeding level 7", r.BloodFlow)
	assert.Equal(t, "Patient reports: Pain level 9", r.PainResponse)
	assert.Equal(t, "Significant swelling present", r.Swelling)
	assert.Equal(t, "Blood pooling visible", r.Discoloration)
	assert.Equal(t, "No detailed wound description available", r.WoundDescription)
	assert.Equal(t, "Combined pain and bleeding treatment needed", r.Recommendation)
	assert.Equal(t, "critical", r.Urgency)

	r = BuildReport(&core.Wound{PainLevel: 1, BleedingLevel: 3}, nil)
	assert.Equal(t, "Minor swelling detected", r.Swelling)
	assert.Equal(t, "Normal", r.BoneIntegrity)
	assert.Equal(t, "Normal skin tone", r.Discoloration)
}

func TestBuildReport_PainOnly(t *testing.T) {
	r := BuildReport(&core.Wound{PainLevel: 6, Metadata: core.WoundMetadata{Description: "Blunt trauma"}}, nil)

	assert.Equal(t, "Bone bruising suspected", r.BoneIntegrity)
	assert.Equal(t, "Contusions present (Pain level 6)", r.SoftTissue)
	assert.Equal(t, "Normal circulation", r.BloodFlow)
	assert.Equal(t, "Bruising and discoloration", r.Discoloration)
	assert.Equal(t, "None detected", r.Swelling)
	assert.Equal(t, "Blunt trauma", r.WoundDescription)
	assert.Equal(t, "Significant pain management needed - use pain medication", r.Recommendation)
}

func TestBuildReport_InjuryStates(t *testing.T) {
	states := core.InjuryStates{
		3: {Bleeding: "Steady trickle", BleedDesc: "Wrap it tight", Urgency: "moderate"},
		5: {Pain: "Throbbing", UnifiedDesc: "Bandage and painkillers"},
	}

	r := BuildReport(&core.Wound{BleedingLevel: 3}, states)
	assert.Equal(t, "Steady trickle", r.SoftTissue)
	assert.Equal(t, "Steady trickle observed", r.BloodFlow)
	assert.Equal(t, "Wrap it tight", r.Recommendation)
	assert.Equal(t, "moderate", r.Urgency)
	assert.Equal(t, "None detected", r.Swelling)

	r = BuildReport(&core.Wound{PainLevel: 5, BleedingLevel: 2}, states)
	assert.Equal(t, "Bandage and painkillers", r.Recommendation)
	assert.Equal(t, "Patient reports: Throbbing", r.PainResponse)
	assert.Equal(t, "unknown", r.Urgency)
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		pain, bleeding int
		want           string
	}{
		{0, 0, "No immediate treatment required"},
		{0, 8, "URGENT: Control bleeding immediately - life threatening"},
		{0, 6, "Apply tourniquet or pressure bandage to stop bleeding"},
		{0, 4, "Apply bandage to control bleeding"},
		{0, 1, "Monitor bleeding, apply basic bandage if needed"},
		{8, 0, "URGENT: Severe pain management required - administer strong painkillers"},
		{4, 0, "Apply pain relief measures - basic painkillers recommended"},
		{1, 0, "Monitor discomfort, rest and basic pain relief if needed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommendation(tt.pain, tt.bleeding, nil), "pain=%d bleeding=%d", tt.pain, tt.bleeding)
	}
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, "critical", Urgency(8, 0, nil))
	assert.Equal(t, "high", Urgency(0, 6, nil))
	assert.Equal(t, "medium", Urgency(4, 1, nil))
	assert.Equal(t, "low", Urgency(2, 0, nil))
	assert.Equal(t, "very low", Urgency(1, 1, nil))
}

func TestAssessment(t *testing.T) {
	assert.Equal(t, "Critical injury detected - immediate attention required", Assessment(&core.Wound{Severity: 71}))
	assert.Equal(t, "Moderate injury found - treatment recommended", Assessment(&core.Wound{Severity: 41}))
	assert.Equal(t, "Active bleeding observed", Assessment(&core.Wound{Severity: 40, Bleeding: 16}))
	assert.Equal(t, "Minor injury noted", Assessment(&core.Wound{Severity: 10, Bleeding: 15}))
}
