// pkg/core/wound.go
package core

// TreatmentStatus is the lifecycle state of an applied treatment.
type TreatmentStatus string

const (
	StatusActive   TreatmentStatus = "active"
	StatusInactive TreatmentStatus = "inactive"
)

// Condition is what a treatment addresses.
type Condition string

const (
	ConditionPain           Condition = "pain"
	ConditionBleeding       Condition = "bleeding"
	ConditionSevereBleeding Condition = "severe_bleeding"
)

// TreatmentType is the kind of item applied.
type TreatmentType string

const (
	TreatmentBandage    TreatmentType = "bandage"
	TreatmentTourniquet TreatmentType = "tourniquet"
	TreatmentMedicine   TreatmentType = "medicine"
	TreatmentInjection  TreatmentType = "injection"
)

// TreatmentRecord is a treatment already applied to a body part.
type TreatmentRecord struct {
	ID              string          `json:"id,omitempty"`
	BodyPart        BodyPart        `json:"bodyPart,omitempty"`
	Type            TreatmentType   `json:"type,omitempty"`
	ItemType        string          `json:"itemType,omitempty"`
	AppliedBy       string          `json:"appliedBy,omitempty"`
	Status          TreatmentStatus `json:"status,omitempty"`
	TreatsCondition Condition       `json:"treatsCondition,omitempty"`
}

// Condition returns the treated condition, deriving it from the type when the
// record does not carry one.
func (r TreatmentRecord) Condition() Condition {
	if r.TreatsCondition != "" {
		return r.TreatsCondition
	}
	switch r.Type {
	case TreatmentBandage:
		return ConditionBleeding
	case TreatmentTourniquet:
		return ConditionSevereBleeding
	case TreatmentMedicine:
		return ConditionPain
	}
	return ""
}

// Active reports whether the record is in effect.
func (r TreatmentRecord) Active() bool {
	return r.Status == StatusActive
}

// WoundMetadata carries descriptive text from the host.
type WoundMetadata struct {
	Description string `json:"description,omitempty"`
}

// Wound is the injury reading of a single body part.
type Wound struct {
	BodyPart      BodyPart                   `json:"bodyPart,omitempty"`
	PainLevel     int                        `json:"painLevel"`
	BleedingLevel int                        `json:"bleedingLevel"`
	IsScar        bool                       `json:"isScar"`
	Health        int                        `json:"health,omitempty"`   // legacy percentage
	Severity      int                        `json:"severity,omitempty"` // host-side severity score
	Bleeding      int                        `json:"bleeding,omitempty"` // host-side blood loss score
	Treatments    map[string]TreatmentRecord `json:"treatments,omitempty"`
	Metadata      WoundMetadata              `json:"metadata,omitempty"`
}

// Score is the composite severity used throughout the UI. Bleeding weighs double.
func (w *Wound) Score() int {
	if w == nil {
		return 0
	}
	return w.PainLevel + w.BleedingLevel*2
}

// Records returns the wound's embedded treatment records with the body part filled in.
func (w *Wound) Records() []TreatmentRecord {
	if w == nil || len(w.Treatments) == 0 {
		return nil
	}
	out := make([]TreatmentRecord, 0, len(w.Treatments))
	for id, r := range w.Treatments {
		if r.ID == "" {
			r.ID = id
		}
		if r.BodyPart == "" {
			r.BodyPart = w.BodyPart
		}
		out = append(out, r)
	}
	return out
}

// Wounds is a snapshot of wounds keyed by backend body part.
type Wounds map[BodyPart]*Wound

// Get returns the wound for the part, or nil.
func (ws Wounds) Get(p BodyPart) *Wound {
	if ws == nil {
		return nil
	}
	return ws[p]
}

// TotalScore sums Score over every wound.
func (ws Wounds) TotalScore() int {
	total := 0
	for _, w := range ws {
		total += w.Score()
	}
	return total
}

// RecordsFor collects records for the part from the wound itself and from a
// snapshot-level treatment list.
func (ws Wounds) RecordsFor(p BodyPart, extra []TreatmentRecord) []TreatmentRecord {
	out := ws.Get(p).Records()
	for i := range out {
		if out[i].BodyPart == "" {
			out[i].BodyPart = p
		}
	}
	for _, r := range extra {
		if r.BodyPart == p {
			out = append(out, r)
		}
	}
	return out
}
