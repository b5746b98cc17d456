// internal/messages/action.go
package messages

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/qc-advancedmedic/nui/pkg/core"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

// ActionParams are the parameters an overlay action may carry. Which of them
// are required depends on the action type.
type ActionParams struct {
	BodyPart      string             `json:"bodyPart" validate:"required"`
	View          string             `json:"view" validate:"required"`
	Kind          core.ItemKind      `json:"kind" validate:"required,oneof=bandage tourniquet medicine injection"`
	ItemID        string             `json:"itemId,omitempty"`
	ItemName      string             `json:"itemName" validate:"required"`
	TreatmentType core.TreatmentType `json:"treatmentType" validate:"required,oneof=bandage tourniquet"`
	Tool          string             `json:"tool" validate:"required"`
	Extra         json.RawMessage    `json:"extra,omitempty"`
}

// Action is a decoded overlay action.
type Action struct {
	Type string `json:"type"`
	ActionParams
}

// requiredParams lists the parameters each action needs.
var requiredParams = map[string][]string{
	nui.ActionInspect:           {"BodyPart"},
	nui.ActionSwitchView:        {"View"},
	nui.ActionSelectBone:        {"BodyPart"},
	nui.ActionSelectBodyPart:    {"BodyPart"},
	nui.ActionSelectItem:        {"Kind"},
	nui.ActionUseTool:           {"Tool"},
	nui.ActionMedicalBandage:    {"BodyPart", "ItemName"},
	nui.ActionMedicalTourniquet: {"BodyPart", "ItemName"},
	nui.ActionReplaceTreatment:  {"BodyPart", "TreatmentType"},
	nui.ActionRemoveTreatment:   {"BodyPart", "TreatmentType"},
}

// DecodeAction parses and validates an overlay action.
func DecodeAction(raw []byte) (Action, error) {
	var env nui.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !slices.Contains(nui.ActionTypes, env.Type) {
		return Action{}, unknownType("action", env.Type, nui.ActionTypes)
	}

	a := Action{Type: env.Type}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &a.ActionParams); err != nil {
			return Action{}, fmt.Errorf("%w: %s: %v", ErrInvalid, env.Type, err)
		}
	}

	fields := requiredParams[env.Type]
	if len(fields) == 0 {
		return a, nil
	}
	if err := validate.StructPartial(a.ActionParams, fields...); err != nil {
		return Action{}, fmt.Errorf("%w: %s: %v", ErrInvalid, env.Type, err)
	}
	if slices.Contains(fields, "BodyPart") && !core.IsKnownKey(a.BodyPart) {
		if s, ok := Suggest(a.BodyPart, core.KnownKeys()); ok {
			return Action{}, fmt.Errorf("%w: %s: unknown body part %q (did you mean %q?)", ErrInvalid, env.Type, a.BodyPart, s)
		}
		return Action{}, fmt.Errorf("%w: %s: unknown body part %q", ErrInvalid, env.Type, a.BodyPart)
	}
	return a, nil
}

// Part returns the backend body part of the action.
func (a Action) Part() core.BodyPart {
	return core.ToBackend(a.BodyPart)
}
