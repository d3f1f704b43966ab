package types

import "encoding/json"

// MessageOperation is the kind of change an inbound envelope carries.
type MessageOperation string

// Inbound operations.
const (
	OpInitialize MessageOperation = "initialize"
	OpUpdate     MessageOperation = "update"
)

// Envelope is one inbound message. Data is itself JSON text: a Snapshot for
// initialize, an UpdatePayload for update.
type Envelope struct {
	TableName  string           `json:"table_name"`
	Operation  MessageOperation `json:"operation"`
	StatusCode string           `json:"status_code"`
	Data       string           `json:"data"`
}

// UpdatePayload replaces the row with the given id wholesale.
type UpdatePayload struct {
	ID         *int64          `json:"id"`
	NewRowData json.RawMessage `json:"new_row_data"`
}

// Handshake is sent once after every successful connect.
type Handshake struct {
	Level  string        `json:"level"`
	Method string        `json:"method"`
	Data   HandshakeData `json:"data"`
}

// HandshakeData carries the free-form greeting.
type HandshakeData struct {
	Content string `json:"content"`
}

// Handshake defaults.
const (
	HandshakeLevel  = "frontdesk"
	HandshakeMethod = "initial"
)

// NewHandshake builds the frontdesk handshake with the given content.
func NewHandshake(content string) Handshake {
	return Handshake{
		Level:  HandshakeLevel,
		Method: HandshakeMethod,
		Data:   HandshakeData{Content: content},
	}
}
