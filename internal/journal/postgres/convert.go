package postgres

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/model"
)

func toModel(e journal.Entry) model.JournalEntry {
	return model.JournalEntry{
		ID:         e.ID,
		RecordedAt: e.Time,
		Kind:       string(e.Kind),
		Type:       e.Type,
		View:       e.View,
		PatientID:  e.PatientID,
		BodyPart:   e.BodyPart,
		Endpoint:   e.Endpoint,
		Success:    e.Success,
		Message:    e.Message,
		Payload:    datatypes.JSON(e.Payload),
	}
}

func fromModel(m model.JournalEntry) journal.Entry {
	e := journal.Entry{
		ID:        m.ID,
		Time:      m.RecordedAt.UTC(),
		Kind:      journal.Kind(m.Kind),
		Type:      m.Type,
		View:      m.View,
		PatientID: m.PatientID,
		BodyPart:  m.BodyPart,
		Endpoint:  m.Endpoint,
		Success:   m.Success,
		Message:   m.Message,
	}
	if len(m.Payload) > 0 {
		e.Payload = json.RawMessage(m.Payload)
	}
	return e
}
