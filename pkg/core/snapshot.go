// pkg/core/snapshot.go
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Translations is the flat string table sent by the host.
type Translations map[string]string

// T returns the translation for key, or fallback when absent.
func (t Translations) T(key, fallback string) string {
	if v, ok := t[key]; ok && v != "" {
		return v
	}
	return fallback
}

// DeathScreenData drives the death screen.
type DeathScreenData struct {
	Message      string       `json:"message"`
	Seconds      int          `json:"seconds" validate:"gte=0"`
	CanRespawn   bool         `json:"canRespawn"`
	MedicsOnDuty int          `json:"medicsOnDuty" validate:"gte=0"`
	Translations Translations `json:"translations,omitempty"`
}

// DeathScreenPatch is a partial update of DeathScreenData.
type DeathScreenPatch struct {
	Message      *string      `json:"message,omitempty"`
	Seconds      *int         `json:"seconds,omitempty" validate:"omitempty,gte=0"`
	CanRespawn   *bool        `json:"canRespawn,omitempty"`
	MedicsOnDuty *int         `json:"medicsOnDuty,omitempty" validate:"omitempty,gte=0"`
	Translations Translations `json:"translations,omitempty"`
}

// Apply merges the patch into d.
func (p DeathScreenPatch) Apply(d DeathScreenData) DeathScreenData {
	if p.Message != nil {
		d.Message = *p.Message
	}
	if p.Seconds != nil {
		d.Seconds = *p.Seconds
	}
	if p.CanRespawn != nil {
		d.CanRespawn = *p.CanRespawn
	}
	if p.MedicsOnDuty != nil {
		d.MedicsOnDuty = *p.MedicsOnDuty
	}
	if p.Translations != nil {
		d.Translations = p.Translations
	}
	return d
}

// Infection is the infection state of a body part.
type Infection struct {
	Stage   int    `json:"stage"`
	Symptom string `json:"symptom,omitempty"`
}

// BodyPartHealth is the host's health reading for a part.
type BodyPartHealth struct {
	Current    int `json:"current"`
	Max        int `json:"max"`
	Percentage int `json:"percentage"`
}

// InjuryState describes a pain/bleeding level in words.
type InjuryState struct {
	Pain        string `json:"pain,omitempty"`
	Bleeding    string `json:"bleeding,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
	Treatment   string `json:"treatment,omitempty"`
	UnifiedDesc string `json:"unifiedDesc,omitempty"`
	BleedDesc   string `json:"bleedDesc,omitempty"`
	PainDesc    string `json:"painDesc,omitempty"`
}

// InjuryStates maps a level (0..10) to its description.
type InjuryStates map[int]InjuryState

// Lookup returns the state for level and whether one exists.
func (s InjuryStates) Lookup(level int) (InjuryState, bool) {
	if s == nil {
		return InjuryState{}, false
	}
	st, ok := s[level]
	return st, ok
}

// InfectionStage names and colours an infection stage.
type InfectionStage struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// BodyPartConfig is the host's configuration of a body part.
type BodyPartConfig struct {
	Label     string `json:"label"`
	MaxHealth int    `json:"maxHealth"`
	Limp      bool   `json:"limp"`
}

// BandageType is a bandage entry in the medical panel's configuration.
type BandageType struct {
	ItemName  string  `json:"itemName"`
	Label     string  `json:"label"`
	DecayRate float64 `json:"decayRate"`
}

// MedicalData drives the medical (self-examination) panel.
type MedicalData struct {
	Wounds            Wounds                      `json:"wounds"`
	Treatments        []TreatmentRecord           `json:"treatments"`
	Infections        map[BodyPart]Infection      `json:"infections,omitempty"`
	BodyPartHealth    map[BodyPart]BodyPartHealth `json:"bodyPartHealth,omitempty"`
	InjuryStates      InjuryStates                `json:"injuryStates,omitempty"`
	InfectionStages   map[int]InfectionStage      `json:"infectionStages,omitempty"`
	BodyParts         map[BodyPart]BodyPartConfig `json:"bodyParts,omitempty"`
	UIColors          map[string]string           `json:"uiColors,omitempty"`
	Inventory         map[string]int              `json:"inventory,omitempty"`
	BandageTypes      map[string]BandageType      `json:"bandageTypes,omitempty"`
	IsSelfExamination bool                        `json:"isSelfExamination"`
	Translations      Translations                `json:"translations,omitempty"`
}

// MedicalDataPatch is a partial update of MedicalData. Only fields present in
// the update replace the current values.
type MedicalDataPatch struct {
	Wounds            Wounds                      `json:"wounds,omitempty"`
	Treatments        []TreatmentRecord           `json:"treatments,omitempty"`
	Infections        map[BodyPart]Infection      `json:"infections,omitempty"`
	BodyPartHealth    map[BodyPart]BodyPartHealth `json:"bodyPartHealth,omitempty"`
	InjuryStates      InjuryStates                `json:"injuryStates,omitempty"`
	InfectionStages   map[int]InfectionStage      `json:"infectionStages,omitempty"`
	BodyParts         map[BodyPart]BodyPartConfig `json:"bodyParts,omitempty"`
	UIColors          map[string]string           `json:"uiColors,omitempty"`
	Inventory         map[string]int              `json:"inventory,omitempty"`
	BandageTypes      map[string]BandageType      `json:"bandageTypes,omitempty"`
	IsSelfExamination *bool                       `json:"isSelfExamination,omitempty"`
	Translations      Translations                `json:"translations,omitempty"`

	// HasTreatments distinguishes an explicit empty treatment list from an absent one.
	HasTreatments bool `json:"-"`
}

// Apply merges the patch into d.
func (p MedicalDataPatch) Apply(d MedicalData) MedicalData {
	if p.Wounds != nil {
		d.Wounds = p.Wounds
	}
	if p.Treatments != nil || p.HasTreatments {
		d.Treatments = p.Treatments
	}
	if p.Infections != nil {
		d.Infections = p.Infections
	}
	if p.BodyPartHealth != nil {
		d.BodyPartHealth = p.BodyPartHealth
	}
	if p.InjuryStates != nil {
		d.InjuryStates = p.InjuryStates
	}
	if p.InfectionStages != nil {
		d.InfectionStages = p.InfectionStages
	}
	if p.BodyParts != nil {
		d.BodyParts = p.BodyParts
	}
	if p.UIColors != nil {
		d.UIColors = p.UIColors
	}
	if p.Inventory != nil {
		d.Inventory = p.Inventory
	}
	if p.BandageTypes != nil {
		d.BandageTypes = p.BandageTypes
	}
	if p.IsSelfExamination != nil {
		d.IsSelfExamination = *p.IsSelfExamination
	}
	if p.Translations != nil {
		d.Translations = p.Translations
	}
	return d
}

// Vitals is the vitals block sent with an inspection.
type Vitals struct {
	HeartRate     int     `json:"heartRate,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	Breathing     int     `json:"breathing,omitempty"`
	BloodPressure string  `json:"bloodPressure,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// PlayerID identifies a patient. Hosts send it as a number or a string.
type PlayerID string

// MissionPlayerID marks an inspection of a mission NPC rather than a player.
const MissionPlayerID PlayerID = "-1"

// UnmarshalJSON accepts numbers and strings.
func (id *PlayerID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = PlayerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid player id %s", b)
	}
	*id = PlayerID(n.String())
	return nil
}

// InspectionData drives the inspection (doctor) panel.
type InspectionData struct {
	PlayerName     string                      `json:"playerName"`
	PlayerID       PlayerID                    `json:"playerId,omitempty"`
	PlayerSource   int                         `json:"playerSource,omitempty"`
	Vitals         Vitals                      `json:"vitals"`
	Wounds         Wounds                      `json:"wounds,omitempty"`
	Treatments     []TreatmentRecord           `json:"treatments,omitempty"`
	Infections     map[BodyPart]Infection      `json:"infections,omitempty"`
	InjuryStates   InjuryStates                `json:"injuryStates,omitempty"`
	InfectionStage map[int]InfectionStage      `json:"infectionStages,omitempty"`
	BodyParts      map[BodyPart]BodyPartConfig `json:"bodyParts,omitempty"`
	UIColors       map[string]string           `json:"uiColors,omitempty"`
	InspectedBy    string                      `json:"inspectedBy,omitempty"`
	InspectionTime int64                       `json:"inspectionTime,omitempty"`
	Inventory      map[string]int              `json:"inventory,omitempty"`
	BloodLevel     int                         `json:"bloodLevel,omitempty"`
	IsBleeding     bool                        `json:"isBleeding,omitempty"`
	Locale         string                      `json:"locale,omitempty"`
	Translations   Translations                `json:"translations,omitempty"`
}

// IsMissionNPC reports whether the patient is a mission NPC.
func (d InspectionData) IsMissionNPC() bool {
	return d.PlayerID == MissionPlayerID
}

// EffectiveBloodLevel treats a missing blood level as full.
func (d InspectionData) EffectiveBloodLevel() int {
	if d.BloodLevel <= 0 {
		return 100
	}
	return d.BloodLevel
}

// MissionWounds is the refreshed wound set for a mission NPC.
type MissionWounds struct {
	Wounds     Wounds                 `json:"wounds"`
	Treatments []TreatmentRecord      `json:"treatments,omitempty"`
	Infections map[BodyPart]Infection `json:"infections,omitempty"`
	BloodLevel int                    `json:"bloodLevel,omitempty"`
	IsBleeding bool                   `json:"isBleeding,omitempty"`
}

// Apply replaces the wound-related fields of d.
func (m MissionWounds) Apply(d InspectionData) InspectionData {
	d.Wounds = m.Wounds
	d.Treatments = m.Treatments
	d.Infections = m.Infections
	d.BloodLevel = m.BloodLevel
	d.IsBleeding = m.IsBleeding
	return d
}
