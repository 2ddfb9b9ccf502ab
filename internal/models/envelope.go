package models

import "encoding/json"

// APIResponse is the standard JSON envelope for every endpoint that is not
// the send-message exchange: a success flag, a human-readable message and an
// optional payload.
type APIResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// DecodeData unmarshals the envelope payload into v.
func (r *APIResponse) DecodeData(v interface{}) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Envelope builds a success envelope around the given payload. Marshal errors
// surface at write time, not here; callers pass values that marshal cleanly.
func Envelope(message string, data interface{}) APIResponse {
	resp := APIResponse{Success: true, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err == nil {
			resp.Data = raw
		}
	}
	return resp
}

// Error builds a failure envelope with the given message.
func Error(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}
