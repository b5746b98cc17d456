// internal/gateway/gateway.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Callback endpoints registered by the host script.
const (
	EndpointCloseMedicalPanel    = "close-medical-panel"
	EndpointCloseInspectionPanel = "closeInspectionPanel"
	EndpointMedicalRequest       = "medical-request"
	EndpointMedicalTreatment     = "medical-treatment"
	EndpointMedicalAction        = "medical-action"
	EndpointRefreshMedicalData   = "refresh-medical-data"
	EndpointGetInventory         = "get-inventory"
	EndpointApplyBandage         = "apply-bandage"
	EndpointApplyTourniquet      = "apply-tourniquet"
	EndpointReplaceTreatment     = "replace-treatment"
	EndpointRemoveTreatment      = "remove-treatment"
	EndpointDisableFocus         = "disable-nui-focus"
	EndpointDeathTimerFinished   = "death-timer-finished"
	EndpointDeathRespawn         = "death-respawn"
	EndpointDeathCallMedic       = "death-call-medic"
	EndpointInspectBodyPart      = "inspect-body-part"
	EndpointTemperatureChecked   = "temperature-checked"
)

// ErrUnavailable is returned when the host could not be reached.
var ErrUnavailable = errors.New("backend unavailable")

// Gateway sends requests to the authoritative host script.
type Gateway interface {
	Post(ctx context.Context, endpoint string, payload any) (Response, error)
}

// Response is the host's reply to a callback.
type Response struct {
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK reports success. Fire-and-forget callbacks reply with an empty object.
func (r Response) OK() bool {
	return r.Status == "" || r.Status == StatusSuccess
}

// Succeeded reports an explicit success status. Treatment replies carry the
// host's inventory verdict, so anything else counts as a failure.
func (r Response) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Reply statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "error"
)

// StatusError is a non-2xx reply from the host.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Code)
}

// TreatmentData is the body of a medical-treatment request.
type TreatmentData struct {
	PlayerID    string `json:"playerId"`
	BodyPart    string `json:"bodyPart"`
	ItemType    string `json:"itemType"`
	ItemName    string `json:"itemName"`
	DisplayName string `json:"displayName"`
}

// Treatment actions of the medical-treatment endpoint.
const (
	ActionApplyBandage       = "apply-bandage"
	ActionApplyTourniquet    = "apply-tourniquet"
	ActionAdministerMedicine = "administer-medicine"
	ActionGiveInjection      = "give-injection"
	ActionCheckVitals        = "check-vitals"
	ActionUseTool            = "use-tool"
)

// TreatmentRequest is posted to medical-treatment.
type TreatmentRequest struct {
	Action string        `json:"action"`
	Data   TreatmentData `json:"data"`
}

// VitalsData identifies the patient of a vitals check.
type VitalsData struct {
	PlayerID     string `json:"playerId"`
	PlayerSource int    `json:"playerSource,omitempty"`
}

// VitalsRequest is posted to medical-request.
type VitalsRequest struct {
	Action string     `json:"action"`
	Data   VitalsData `json:"data"`
}

// ToolRequest is posted to medical-action when a doctor's bag tool is used.
type ToolRequest struct {
	Action      string `json:"action"`
	Target      string `json:"target"`
	Extra       any    `json:"extra,omitempty"`
	PlayerID    string `json:"playerId"`
	PatientName string `json:"patientName"`
}

// BodyPartTreatment is the body of the medical panel's apply and remove callbacks.
type BodyPartTreatment struct {
	BodyPart      string `json:"bodyPart"`
	BandageType   string `json:"bandageType,omitempty"`
	TreatmentType string `json:"treatmentType,omitempty"`
}

// InventoryReply is the data of a get-inventory reply.
type InventoryReply struct {
	Inventory map[string]int `json:"inventory"`
}

// DecodeInventory reads the inventory from a get-inventory reply. Hosts either
// wrap it in data or send it at the top level.
func DecodeInventory(r Response) (map[string]int, error) {
	if len(r.Data) == 0 {
		return nil, nil
	}
	if isEmptyArray(r.Data) {
		return map[string]int{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}
	if wrapped, ok := fields["inventory"]; ok {
		if isEmptyArray(wrapped) {
			return map[string]int{}, nil
		}
		var inv map[string]int
		if err := json.Unmarshal(wrapped, &inv); err != nil {
			return nil, fmt.Errorf("failed to decode inventory: %w", err)
		}
		return inv, nil
	}
	var flat map[string]int
	if err := json.Unmarshal(r.Data, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}
	return flat, nil
}

// isEmptyArray reports a Lua empty table, which the host encodes as [].
func isEmptyArray(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("[]"))
}
