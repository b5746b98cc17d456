package nui

import "encoding/json"

// Push types sent by the host script.
const (
	PushShowDeathScreen     = "show-death-screen"
	PushUpdateDeathTimer    = "update-death-timer"
	PushHideDeathScreen     = "hide-death-screen"
	PushShowMedicalPanel    = "show-medical-panel"
	PushShowInspectionPanel = "show-inspection-panel"
	PushUpdateMedicalData   = "update-medical-data"
	PushHideAll             = "hide-all"

	// inspection panel only
	PushTreatmentResponse = "medical-treatment-response"
	PushConditionUpdate   = "patient-condition-update"
	PushConfigData        = "medical-config-data"
	PushVitalsResponse    = "vitals-response"
	PushMissionWounds     = "update-mission-wounds"
	PushToolResult        = "tool-usage-result"
)

// PushTypes lists every push type the bridge understands.
var PushTypes = []string{
	PushShowDeathScreen, PushUpdateDeathTimer, PushHideDeathScreen,
	PushShowMedicalPanel, PushShowInspectionPanel, PushUpdateMedicalData, PushHideAll,
	PushTreatmentResponse, PushConditionUpdate, PushConfigData,
	PushVitalsResponse, PushMissionWounds, PushToolResult,
}

// Action types sent by the overlay.
const (
	ActionInspect            = "inspection/inspect"
	ActionSwitchView         = "inspection/switch-view"
	ActionSelectBone         = "inspection/select-bone"
	ActionSelectBodyPart     = "inspection/select-body-part"
	ActionSelectItem         = "inspection/select-item"
	ActionVitalsStart        = "inspection/vitals-start"
	ActionVitalsStop         = "inspection/vitals-stop"
	ActionTemperatureStart   = "inspection/temperature-start"
	ActionTemperatureStop    = "inspection/temperature-stop"
	ActionApplyBandage       = "inspection/apply-bandage"
	ActionApplyTourniquet    = "inspection/apply-tourniquet"
	ActionAdministerMedicine = "inspection/administer-medicine"
	ActionGiveInjection      = "inspection/give-injection"
	ActionUseTool            = "inspection/use-tool"
	ActionCloseInspection    = "inspection/close"

	ActionOpenBandagePanel    = "medical/open-bandage"
	ActionOpenTourniquetPanel = "medical/open-tourniquet"
	ActionOpenTreatmentsPanel = "medical/open-treatments"
	ActionCloseSubPanel       = "medical/close-subpanel"
	ActionMedicalBandage      = "medical/apply-bandage"
	ActionMedicalTourniquet   = "medical/apply-tourniquet"
	ActionReplaceTreatment    = "medical/replace-treatment"
	ActionRemoveTreatment     = "medical/remove-treatment"
	ActionCloseMedical        = "medical/close"

	ActionRespawn      = "death/respawn"
	ActionCallMedic    = "death/call-medic"
	ActionDisableFocus = "death/disable-focus"
)

// ActionTypes lists every action type the bridge understands.
var ActionTypes = []string{
	ActionInspect, ActionSwitchView, ActionSelectBone, ActionSelectBodyPart, ActionSelectItem,
	ActionVitalsStart, ActionVitalsStop, ActionTemperatureStart, ActionTemperatureStop,
	ActionApplyBandage, ActionApplyTourniquet, ActionAdministerMedicine, ActionGiveInjection,
	ActionUseTool, ActionCloseInspection,
	ActionOpenBandagePanel, ActionOpenTourniquetPanel, ActionOpenTreatmentsPanel, ActionCloseSubPanel,
	ActionMedicalBandage, ActionMedicalTourniquet, ActionReplaceTreatment, ActionRemoveTreatment,
	ActionCloseMedical,
	ActionRespawn, ActionCallMedic, ActionDisableFocus,
}

// Envelope wraps an overlay action.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound message types written to the overlay.
const (
	TypeView = "view"
	TypeAck  = "ack"
)

// ViewMessage carries the current view model to the overlay.
type ViewMessage struct {
	Type    string `json:"type"` // always "view"
	Version uint64 `json:"version"`
	Payload any    `json:"payload"`
}

// AckMessage is the bridge's response to an action.
type AckMessage struct {
	Type  string `json:"type"` // always "ack"
	For   string `json:"for"`  // the action type being acknowledged
	Error string `json:"error,omitempty"`
}
