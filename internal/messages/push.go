// internal/messages/push.go
package messages

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/qc-advancedmedic/nui/pkg/core"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

var (
	// ErrUnknownType is returned for message types the bridge does not handle.
	ErrUnknownType = errors.New("unknown message type")
	// ErrInvalid is returned when a message fails validation.
	ErrInvalid = errors.New("invalid message")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Push is a decoded host message. Exactly one payload field is set, matching
// Type; hide messages carry none.
type Push struct {
	Type string

	DeathScreen       *core.DeathScreenData
	DeathPatch        *core.DeathScreenPatch
	Medical           *core.MedicalData
	MedicalPatch      *core.MedicalDataPatch
	Inspection        *core.InspectionData
	TreatmentResponse *nui.TreatmentResponse
	ConditionUpdate   *nui.ConditionUpdate
	Config            *core.CatalogConfig
	Vitals            *nui.VitalsResponse
	MissionWounds     *core.MissionWounds
	ToolResult        *nui.ToolResult

	// Warnings lists tolerated problems, such as unknown body-part keys.
	Warnings []string
}

// payloadShape says where a push type keeps its payload.
type payloadShape int

const (
	shapeNone payloadShape = iota
	shapeData              // under "data"
	shapeFlat              // next to "type"
)

var pushShapes = map[string]payloadShape{
	nui.PushShowDeathScreen:     shapeData,
	nui.PushUpdateDeathTimer:    shapeData,
	nui.PushHideDeathScreen:     shapeNone,
	nui.PushShowMedicalPanel:    shapeData,
	nui.PushShowInspectionPanel: shapeData,
	nui.PushUpdateMedicalData:   shapeData,
	nui.PushHideAll:             shapeNone,
	nui.PushTreatmentResponse:   shapeFlat,
	nui.PushConditionUpdate:     shapeFlat,
	nui.PushConfigData:          shapeFlat,
	nui.PushVitalsResponse:      shapeFlat,
	nui.PushMissionWounds:       shapeData,
	nui.PushToolResult:          shapeData,
}

// medicalMapFields are the object fields of a medical update that replace the
// current value even when the host sends them empty.
var medicalMapFields = []string{
	"wounds", "infections", "bodyPartHealth", "injuryStates", "infectionStages",
	"bodyParts", "uiColors", "inventory", "bandageTypes", "translations",
}

func unknownType(kind, t string, known []string) error {
	if s, ok := Suggest(t, known); ok {
		return fmt.Errorf("%w %s %q (did you mean %q?)", ErrUnknownType, kind, t, s)
	}
	return fmt.Errorf("%w %s %q", ErrUnknownType, kind, t)
}

// parseTree decodes raw JSON into a generic tree, keeping numbers exact.
func parseTree(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: empty message", ErrInvalid)
	}
	return obj, nil
}

// DecodePush parses, normalizes and validates a host message.
func DecodePush(raw []byte) (Push, error) {
	obj, err := parseTree(raw)
	if err != nil {
		return Push{}, err
	}
	t, _ := obj["type"].(string)
	shape, ok := pushShapes[t]
	if !ok {
		return Push{}, unknownType("push", t, nui.PushTypes)
	}

	p := Push{Type: t}
	if shape == shapeNone {
		return p, nil
	}

	var body map[string]any
	switch shape {
	case shapeData:
		switch d := obj["data"].(type) {
		case map[string]any:
			body = d
		case []any:
			if len(d) > 0 {
				return Push{}, fmt.Errorf("%w: %s data is not an object", ErrInvalid, t)
			}
		case nil:
		default:
			return Push{}, fmt.Errorf("%w: %s data is not an object", ErrInvalid, t)
		}
		if body == nil {
			body = map[string]any{}
		}
	case shapeFlat:
		body = obj
		delete(body, "type")
	}

	emptyTablesToNull(body)
	levelTables(body)
	p.Warnings = canonicalParts(body)
	if c, ok := body["conditions"].(map[string]any); ok {
		p.Warnings = append(p.Warnings, canonicalParts(c)...)
	}

	if err := p.decode(body); err != nil {
		return Push{}, err
	}
	return p, nil
}

func (p *Push) decode(body map[string]any) error {
	var target any
	switch p.Type {
	case nui.PushShowDeathScreen:
		p.DeathScreen = &core.DeathScreenData{}
		target = p.DeathScreen
	case nui.PushUpdateDeathTimer:
		p.DeathPatch = &core.DeathScreenPatch{}
		target = p.DeathPatch
	case nui.PushShowMedicalPanel:
		p.Medical = &core.MedicalData{}
		target = p.Medical
	case nui.PushUpdateMedicalData:
		for _, f := range medicalMapFields {
			if v, ok := body[f]; ok && v == nil {
				body[f] = map[string]any{}
			}
		}
		_, hasTreatments := body["treatments"]
		p.MedicalPatch = &core.MedicalDataPatch{HasTreatments: hasTreatments}
		target = p.MedicalPatch
	case nui.PushShowInspectionPanel:
		p.Inspection = &core.InspectionData{}
		target = p.Inspection
	case nui.PushTreatmentResponse:
		p.TreatmentResponse = &nui.TreatmentResponse{}
		target = p.TreatmentResponse
	case nui.PushConditionUpdate:
		p.ConditionUpdate = &nui.ConditionUpdate{}
		target = p.ConditionUpdate
	case nui.PushConfigData:
		p.Config = &core.CatalogConfig{}
		target = p.Config
	case nui.PushVitalsResponse:
		p.Vitals = &nui.VitalsResponse{}
		target = p.Vitals
	case nui.PushMissionWounds:
		p.MissionWounds = &core.MissionWounds{}
		target = p.MissionWounds
	case nui.PushToolResult:
		p.ToolResult = &nui.ToolResult{}
		target = p.ToolResult
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, p.Type, err)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, p.Type, err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, p.Type, err)
	}
	p.normalize()
	return nil
}

func (p *Push) normalize() {
	switch {
	case p.Medical != nil:
		normalizeWounds(p.Medical.Wounds)
		normalizeRecords(p.Medical.Treatments)
	case p.MedicalPatch != nil:
		normalizeWounds(p.MedicalPatch.Wounds)
		normalizeRecords(p.MedicalPatch.Treatments)
	case p.Inspection != nil:
		normalizeWounds(p.Inspection.Wounds)
		normalizeRecords(p.Inspection.Treatments)
	case p.ConditionUpdate != nil:
		normalizeWounds(p.ConditionUpdate.Conditions.Wounds)
		normalizeRecords(p.ConditionUpdate.Conditions.Treatments)
	case p.MissionWounds != nil:
		normalizeWounds(p.MissionWounds.Wounds)
		normalizeRecords(p.MissionWounds.Treatments)
	}
}

// IsInspectionPush reports whether a push type only concerns an open inspection panel.
func IsInspectionPush(t string) bool {
	return slices.Contains([]string{
		nui.PushTreatmentResponse, nui.PushConditionUpdate, nui.PushConfigData,
		nui.PushVitalsResponse, nui.PushMissionWounds, nui.PushToolResult,
	}, t)
}
