package payme

import (
	"bytes"
	"encoding/json"
)

type rpcRequest struct {
	Method string
	Params json.RawMessage
	ID     json.Number
}

type rpcResponse struct {
	Result any         `json:"result,omitempty"`
	Error  *Error      `json:"error,omitempty"`
	ID     json.Number `json:"id"`
}

var zeroID = json.Number("0")

// decodeRequest validates the Merchant API envelope. The returned id is usable
// for the error answer even when validation fails.
func decodeRequest(body []byte) (rpcRequest, *Error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return rpcRequest{ID: zeroID}, errParse.err()
	}

	req := rpcRequest{ID: zeroID}
	var id json.Number
	if err := json.Unmarshal(raw["id"], &id); err != nil || id == "" {
		return req, errInvalidRequest.err()
	}
	if _, err := id.Int64(); err != nil {
		return req, errInvalidRequest.err()
	}
	req.ID = id

	if err := json.Unmarshal(raw["method"], &req.Method); err != nil || req.Method == "" {
		return req, errInvalidRequest.err()
	}

	params := bytes.TrimSpace(raw["params"])
	if len(params) == 0 || params[0] != '{' {
		return req, errInvalidRequest.err()
	}
	req.Params = params
	return req, nil
}

func decodeParams(params json.RawMessage, dst any) error {
	if err := json.Unmarshal(params, dst); err != nil {
		return errInvalidRequest.err()
	}
	return nil
}
