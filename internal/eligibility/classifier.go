// Package eligibility decides which treatments a wound qualifies for.
//
// Every function is pure and nil-safe. A nil wound stands for a wound that is
// absent or was never discovered, and is never eligible for anything.
package eligibility

import "github.com/qc-advancedmedic/nui/pkg/core"

// Thresholds on the 0..10 pain and bleeding scales.
const (
	MaterialPain     = 3 // discovery requires pain above this
	MaterialBleeding = 2 // or bleeding above this

	BandageMinBleeding    = 1
	BandageMaxBleeding    = 6
	TourniquetMinBleeding = 7

	InjectionPain     = 8
	InjectionBleeding = 7
)

// Label names the emergency tier of an injection-eligible wound.
type Label string

const (
	LabelCritical       Label = "critical emergency"
	LabelSeverePain     Label = "severe pain"
	LabelSevereBleeding Label = "severe bleeding"
)

func active(w *core.Wound) bool {
	return w != nil && !w.IsScar
}

// Material reports whether an inspected wound is significant enough to be
// noticed and treated.
func Material(w *core.Wound) bool {
	if !active(w) {
		return false
	}
	return w.PainLevel > MaterialPain || w.BleedingLevel > MaterialBleeding
}

// IsBandageEligible reports whether bleeding sits in the bandage range.
func IsBandageEligible(w *core.Wound) bool {
	if !active(w) {
		return false
	}
	return w.BleedingLevel >= BandageMinBleeding && w.BleedingLevel <= BandageMaxBleeding
}

// IsTourniquetEligible reports whether bleeding needs a tourniquet.
func IsTourniquetEligible(w *core.Wound) bool {
	if !active(w) {
		return false
	}
	return w.BleedingLevel >= TourniquetMinBleeding
}

// IsMedicineEligible reports whether the wound hurts and no active pain
// treatment covers its body part.
func IsMedicineEligible(w *core.Wound, records []core.TreatmentRecord) bool {
	if !active(w) || w.PainLevel <= 0 {
		return false
	}
	return !hasActive(w.BodyPart, core.ConditionPain, records)
}

// NeedsMedicine is IsMedicineEligible, named for list building.
func NeedsMedicine(w *core.Wound, records []core.TreatmentRecord) bool {
	return IsMedicineEligible(w, records)
}

// IsInjectionEligible reports whether the wound is an emergency.
func IsInjectionEligible(w *core.Wound) bool {
	_, ok := InjectionLabel(w)
	return ok
}

// InjectionLabel returns the emergency label of the wound.
func InjectionLabel(w *core.Wound) (Label, bool) {
	if !active(w) {
		return "", false
	}
	pain := w.PainLevel >= InjectionPain
	bleeding := w.BleedingLevel >= InjectionBleeding
	switch {
	case pain && bleeding:
		return LabelCritical, true
	case pain:
		return LabelSeverePain, true
	case bleeding:
		return LabelSevereBleeding, true
	}
	return "", false
}

// IsAlreadyBandaged reports whether an active bleeding treatment covers part.
func IsAlreadyBandaged(part core.BodyPart, records []core.TreatmentRecord) bool {
	return hasActive(part, core.ConditionBleeding, records)
}

// IsAlreadyTourniqueted reports whether an active severe bleeding treatment covers part.
func IsAlreadyTourniqueted(part core.BodyPart, records []core.TreatmentRecord) bool {
	return hasActive(part, core.ConditionSevereBleeding, records)
}

// NeedsBandage reports a bandage-eligible wound that is not bandaged yet.
func NeedsBandage(w *core.Wound, records []core.TreatmentRecord) bool {
	return IsBandageEligible(w) && !IsAlreadyBandaged(w.BodyPart, records)
}

// NeedsTourniquet reports a tourniquet-eligible wound without an active tourniquet.
func NeedsTourniquet(w *core.Wound, records []core.TreatmentRecord) bool {
	return IsTourniquetEligible(w) && !IsAlreadyTourniqueted(w.BodyPart, records)
}

// Severity is the composite score, zero for scars and missing wounds.
func Severity(w *core.Wound) int {
	if !active(w) {
		return 0
	}
	return w.Score()
}

// hasActive only counts records of part. Wound.Records and Wounds.RecordsFor
// fill in the part of records from a wound's own treatment map.
func hasActive(part core.BodyPart, cond core.Condition, records []core.TreatmentRecord) bool {
	for _, r := range records {
		if r.BodyPart != part {
			continue
		}
		if r.Active() && r.Condition() == cond {
			return true
		}
	}
	return false
}
