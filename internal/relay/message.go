package relay

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// incoming is the client frame. Fields other than data are ignored.
type incoming struct {
	Data *string `json:"data"`
}

// decodePayload extracts and base64-decodes the data field of a JSON frame.
// A missing or null field decodes to an empty payload.
func decodePayload(frame []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("message is not a JSON object")
	}

	var msg incoming
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	if msg.Data == nil || *msg.Data == "" {
		return []byte{}, nil
	}

	data, err := base64.StdEncoding.DecodeString(*msg.Data)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return data, nil
}
