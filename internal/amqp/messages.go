package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EntryRecordedMessage announces a newly stored metric entry. It carries only
// identifiers; consumers load the entry itself from the metric store.
type EntryRecordedMessage struct {
	EntryID   string    `json:"entryId"`
	CompanyID string    `json:"companyId"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryRecordedMessage(entryID, companyID, kind string) *EntryRecordedMessage {
	return &EntryRecordedMessage{
		EntryID:   entryID,
		CompanyID: companyID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryRecordedMessageFromJSON decodes a message and rejects ones without an
// entry ID, which no consumer could act on.
func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.EntryID == "" {
		return nil, errors.New("message has no entry id")
	}
	return &msg, nil
}
