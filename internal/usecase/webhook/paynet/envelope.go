package paynet

import (
	"bytes"
	"encoding/json"
)

const jsonrpcVersion = "2.0"

type rpcRequest struct {
	Method string
	Params json.RawMessage
	ID     json.RawMessage
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

var nullID = json.RawMessage("null")

// decodeRequest validates the JSON-RPC 2.0 envelope. The id is echoed only
// once it is known to be a number or a string.
func decodeRequest(body []byte) (rpcRequest, *Error) {
	req := rpcRequest{ID: nullID}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, errParse.err()
	}

	id := bytes.TrimSpace(raw["id"])
	if len(id) == 0 || (id[0] != '"' && !isNumber(id)) {
		return req, errInvalidRequest.err()
	}
	req.ID = id

	var version string
	if err := json.Unmarshal(raw["jsonrpc"], &version); err != nil || version != jsonrpcVersion {
		return req, errInvalidRequest.err()
	}
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

func isNumber(raw []byte) bool {
	var n json.Number
	return json.Unmarshal(raw, &n) == nil && raw[0] != '"'
}

func decodeParams(params json.RawMessage, dst any) error {
	if err := json.Unmarshal(params, dst); err != nil {
		return errInvalidRequest.err()
	}
	return nil
}
