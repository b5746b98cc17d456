// pkg/core/bodypart.go
package core

import "strings"

// BodyPart is the backend identifier of a body region, as used by the host script.
type BodyPart string

const (
	Head      BodyPart = "HEAD"
	Neck      BodyPart = "NECK"
	Spine     BodyPart = "SPINE"
	UpperBody BodyPart = "UPPER_BODY"
	LowerBody BodyPart = "LOWER_BODY"
	LeftArm   BodyPart = "LARM"
	RightArm  BodyPart = "RARM"
	LeftHand  BodyPart = "LHAND"
	RightHand BodyPart = "RHAND"
	LeftLeg   BodyPart = "LLEG"
	RightLeg  BodyPart = "RLEG"
	LeftFoot  BodyPart = "LFOOT"
	RightFoot BodyPart = "RFOOT"
	Blood     BodyPart = "BLOOD"

	// Patient addresses the whole patient (medicine is not applied to a single part).
	Patient BodyPart = "patient"
)

// InspectableParts lists the 12 parts that can be examined, in panel order.
var InspectableParts = []BodyPart{
	Head, Spine, UpperBody, LowerBody,
	LeftArm, RightArm, LeftHand, RightHand,
	LeftLeg, RightLeg, LeftFoot, RightFoot,
}

// frontendKeys maps every key the overlay uses to its backend part.
// The inspection panel and the medical panel name the torso differently.
var frontendKeys = map[string]BodyPart{
	"head":    Head,
	"neck":    Neck,
	"spine":   Spine,
	"upbody":  UpperBody,
	"upper":   UpperBody,
	"lowbody": LowerBody,
	"lower":   LowerBody,
	"larm":    LeftArm,
	"rarm":    RightArm,
	"lhand":   LeftHand,
	"rhand":   RightHand,
	"lleg":    LeftLeg,
	"rleg":    RightLeg,
	"lfoot":   LeftFoot,
	"rfoot":   RightFoot,
	"blood":   Blood,
}

var inspectionKeys = map[BodyPart]string{
	Head:      "head",
	Spine:     "spine",
	UpperBody: "upbody",
	LowerBody: "lowbody",
	LeftArm:   "larm",
	RightArm:  "rarm",
	LeftHand:  "lhand",
	RightHand: "rhand",
	LeftLeg:   "lleg",
	RightLeg:  "rleg",
	LeftFoot:  "lfoot",
	RightFoot: "rfoot",
}

var labels = map[BodyPart]string{
	Head:      "Head",
	Neck:      "Neck",
	Spine:     "Spine",
	UpperBody: "Upper Body",
	LowerBody: "Lower Body",
	LeftArm:   "Left Arm",
	RightArm:  "Right Arm",
	LeftHand:  "Left Hand",
	RightHand: "Right Hand",
	LeftLeg:   "Left Leg",
	RightLeg:  "Right Leg",
	LeftFoot:  "Left Foot",
	RightFoot: "Right Foot",
}

var thoughtNames = map[BodyPart]string{
	Head:      "head",
	Neck:      "neck",
	Spine:     "spine",
	UpperBody: "chest",
	LowerBody: "stomach",
	LeftArm:   "left arm",
	RightArm:  "right arm",
	LeftHand:  "left hand",
	RightHand: "right hand",
	LeftLeg:   "left leg",
	RightLeg:  "right leg",
	LeftFoot:  "left foot",
	RightFoot: "right foot",
}

// ToBackend resolves a frontend key (or an already-backend key) to a BodyPart.
// Unknown keys fall back to their upper-cased form.
func ToBackend(key string) BodyPart {
	if p, ok := frontendKeys[strings.ToLower(key)]; ok {
		return p
	}
	if key == string(Patient) {
		return Patient
	}
	return BodyPart(strings.ToUpper(key))
}

// IsKnownKey reports whether key is a frontend or backend key of a known part.
func IsKnownKey(key string) bool {
	if _, ok := frontendKeys[strings.ToLower(key)]; ok {
		return true
	}
	_, ok := labels[BodyPart(strings.ToUpper(key))]
	return ok || BodyPart(strings.ToUpper(key)) == Blood
}

// KnownKeys returns every frontend key, for suggestions.
func KnownKeys() []string {
	keys := make([]string, 0, len(frontendKeys))
	for k := range frontendKeys {
		keys = append(keys, k)
	}
	return keys
}

// FrontendKey returns the inspection-panel key of the part, or the lower-cased
// backend key when the part is not inspectable.
func (p BodyPart) FrontendKey() string {
	if k, ok := inspectionKeys[p]; ok {
		return k
	}
	return strings.ToLower(string(p))
}

// Label is the fallback display name used by the inspection panel.
func (p BodyPart) Label() string {
	if l, ok := labels[p]; ok {
		return l
	}
	return string(p)
}

// ThoughtName is the first-person name used in medical panel thoughts.
func (p BodyPart) ThoughtName() string {
	if n, ok := thoughtNames[p]; ok {
		return n
	}
	return strings.ToLower(string(p))
}

// Inspectable reports whether the part is one of the 12 examinable parts.
func (p BodyPart) Inspectable() bool {
	_, ok := inspectionKeys[p]
	return ok
}
