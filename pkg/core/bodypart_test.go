package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBackend(t *testing.T) {
	tests := []struct {
		key  string
		want BodyPart
	}{
		{"head", Head},
		{"upbody", UpperBody},
		{"upper", UpperBody},
		{"lowbody", LowerBody},
		{"lower", LowerBody},
		{"larm", LeftArm},
		{"rarm", RightArm},
		{"RFOOT", RightFoot},
		{"neck", Neck},
		{"blood", Blood},
		{"patient", Patient},
		{"tail", BodyPart("TAIL")},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBackend(tt.key))
		})
	}
}

func TestBodyPart_RoundTripInspectable(t *testing.T) {
	assert.Len(t, InspectableParts, 12)
	for _, p := range InspectableParts {
		assert.True(t, p.Inspectable(), p)
		assert.Equal(t, p, ToBackend(p.FrontendKey()))
	}
	assert.False(t, Neck.Inspectable())
	assert.False(t, Blood.Inspectable())
}

func TestBodyPart_Names(t *testing.T) {
	assert.Equal(t, "Upper Body", UpperBody.Label())
	assert.Equal(t, "Left Arm", LeftArm.Label())
	assert.Equal(t, "chest", UpperBody.ThoughtName())
	assert.Equal(t, "stomach", LowerBody.ThoughtName())
	assert.Equal(t, "right foot", RightFoot.ThoughtName())
	assert.Equal(t, "TAIL", BodyPart("TAIL").Label())
	assert.Equal(t, "tail", BodyPart("TAIL").ThoughtName())
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, IsKnownKey("upbody"))
	assert.True(t, IsKnownKey("UPPER_BODY"))
	assert.True(t, IsKnownKey("BLOOD"))
	assert.False(t, IsKnownKey("uppbody"))
}

func TestTreatmentRecord_Condition(t *testing.T) {
	assert.Equal(t, ConditionBleeding, TreatmentRecord{Type: TreatmentBandage}.Condition())
	assert.Equal(t, ConditionSevereBleeding, TreatmentRecord{Type: TreatmentTourniquet}.Condition())
	assert.Equal(t, ConditionPain, TreatmentRecord{Type: TreatmentMedicine}.Condition())
	assert.Equal(t, ConditionPain, TreatmentRecord{Type: TreatmentBandage, TreatsCondition: ConditionPain}.Condition())
	assert.Equal(t, Condition(""), TreatmentRecord{Type: TreatmentInjection}.Condition())
}

func TestWound_ScoreAndRecords(t *testing.T) {
	var nilWound *Wound
	assert.Equal(t, 0, nilWound.Score())
	assert.Nil(t, nilWound.Records())

	w := &Wound{
		BodyPart:      LeftLeg,
		PainLevel:     3,
		BleedingLevel: 4,
		Treatments: map[string]TreatmentRecord{
			"t1": {Status: StatusActive, TreatsCondition: ConditionBleeding},
		},
	}
	assert.Equal(t, 11, w.Score())

	recs := w.Records()
	if assert.Len(t, recs, 1) {
		assert.Equal(t, "t1", recs[0].ID)
		assert.Equal(t, LeftLeg, recs[0].BodyPart)
	}

	ws := Wounds{LeftLeg: w, Head: {BodyPart: Head, PainLevel: 2}}
	assert.Equal(t, 13, ws.TotalScore())
	all := ws.RecordsFor(LeftLeg, []TreatmentRecord{
		{BodyPart: LeftLeg, Type: TreatmentBandage, Status: StatusActive},
		{BodyPart: Head, Type: TreatmentBandage, Status: StatusActive},
	})
	assert.Len(t, all, 2)

	ws[RightArm] = &Wound{Treatments: map[string]TreatmentRecord{"t2": {Status: StatusActive}}}
	keyed := ws.RecordsFor(RightArm, nil)
	if assert.Len(t, keyed, 1) {
		assert.Equal(t, RightArm, keyed[0].BodyPart, "map key fills the part")
	}
}

func TestCatalogConfig_Merge(t *testing.T) {
	base := DefaultCatalog()
	merged := CatalogConfig{
		TourniquetTypes: map[string]ItemConfig{
			"strap": {ItemName: "tq_strap"},
		},
		BodyParts: map[BodyPart]BodyPartConfig{UpperBody: {Label: "Torso"}},
	}.Merge(base)

	assert.Equal(t, base.Bandages, merged.Bandages)
	if assert.Len(t, merged.Tourniquets, 1) {
		tq := merged.Tourniquets[0]
		assert.Equal(t, "Unknown Tourniquet", tq.Name)
		assert.Equal(t, 70, tq.Effectiveness)
		assert.Equal(t, 1200, tq.MaxDuration)
	}
	assert.Equal(t, "Torso", merged.PartLabel(UpperBody))
	assert.Equal(t, "Head", merged.PartLabel(Head))

	it, ok := merged.Find(KindMedicine, "morphine")
	assert.True(t, ok)
	assert.Equal(t, 95, it.Effectiveness)
}

func TestPatches(t *testing.T) {
	secs := 30
	d := DeathScreenPatch{Seconds: &secs}.Apply(DeathScreenData{Message: "You died", Seconds: 300})
	assert.Equal(t, "You died", d.Message)
	assert.Equal(t, 30, d.Seconds)

	selfExam := true
	m := MedicalDataPatch{
		Inventory:         map[string]int{"cloth_band": 2},
		IsSelfExamination: &selfExam,
	}.Apply(MedicalData{
		Treatments: []TreatmentRecord{{BodyPart: Head, Type: TreatmentBandage}},
	})
	assert.Len(t, m.Treatments, 1)
	assert.Equal(t, 2, m.Inventory["cloth_band"])
	assert.True(t, m.IsSelfExamination)

	cleared := MedicalDataPatch{HasTreatments: true}.Apply(m)
	assert.Empty(t, cleared.Treatments)
}

func TestPlayerID_UnmarshalJSON(t *testing.T) {
	var d InspectionData
	assert.NoError(t, json.Unmarshal([]byte(`{"playerId":-1}`), &d))
	assert.True(t, d.IsMissionNPC())

	assert.NoError(t, json.Unmarshal([]byte(`{"playerId":"42"}`), &d))
	assert.Equal(t, PlayerID("42"), d.PlayerID)
	assert.False(t, d.IsMissionNPC())

	assert.Error(t, json.Unmarshal([]byte(`{"playerId":true}`), &d))
	assert.Equal(t, 100, InspectionData{}.EffectiveBloodLevel())
	assert.Equal(t, 40, InspectionData{BloodLevel: 40}.EffectiveBloodLevel())
}
