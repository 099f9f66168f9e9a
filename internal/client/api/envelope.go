package api

import "encoding/json"

// envelope is the response shape shared by every backend endpoint:
//
//	{ "success": bool, "message": "...", "data": {...}, "errors": {"field": ["msg"]} }
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    json.RawMessage     `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// decodeData unmarshals the envelope's data payload into out. A missing or
// null payload leaves out untouched and is not an error; callers that require
// data check for it explicitly.
func (e *envelope) decodeData(out any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, out)
}
