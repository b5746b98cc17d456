package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&BridgeInfo{},
	&JournalEntry{},
}

// BridgeInfo describes the bridge instance that owns the journal.
type BridgeInfo struct {
	gorm.Model
	Resource string `json:"resource" gorm:"size:127"`
	Version  string `json:"version" gorm:"size:31"`
}

func (*BridgeInfo) TableName() string {
	return "bridge_infos"
}

// JournalEntry is one recorded action, host push or callback outcome.
type JournalEntry struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	RecordedAt time.Time      `json:"recordedAt" gorm:"index"`
	Kind       string         `json:"kind" gorm:"size:16;index"`
	Type       string         `json:"type" gorm:"size:64"`
	View       string         `json:"view" gorm:"size:32"`
	PatientID  string         `json:"patientId" gorm:"size:64;index"`
	BodyPart   string         `json:"bodyPart" gorm:"size:16"`
	Endpoint   string         `json:"endpoint" gorm:"size:64"`
	Success    bool           `json:"success"`
	Message    string         `json:"message" gorm:"size:512"`
	Payload    datatypes.JSON `json:"payload"`
}

func (*JournalEntry) TableName() string {
	return "journal_entries"
}
