package nui

import "github.com/qc-advancedmedic/nui/pkg/core"

// TreatmentResponse is the host's medical-treatment-response push.
type TreatmentResponse struct {
	Success           bool                      `json:"success"`
	Message           string                    `json:"message,omitempty"`
	Action            string                    `json:"action" validate:"required"`
	BodyPart          string                    `json:"bodyPart,omitempty"`
	ItemName          string                    `json:"itemName,omitempty"`
	UpdatedConditions map[string]map[string]any `json:"updatedConditions,omitempty"`
}

// ConditionUpdate is the host's patient-condition-update push.
type ConditionUpdate struct {
	PlayerID   core.PlayerID      `json:"playerId" validate:"required"`
	Conditions core.MissionWounds `json:"conditions"`
}

// VitalsResponse is the host's vitals-response push.
type VitalsResponse struct {
	Health        int  `json:"health" validate:"gte=0"`
	IsDead        bool `json:"isDead"`
	IsUnconscious bool `json:"isUnconscious"`
}

// ToolResult is the data of a tool-usage-result push.
type ToolResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
