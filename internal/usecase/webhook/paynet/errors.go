package paynet

import "fmt"

// Error is a JSON-RPC 2.0 error object with Paynet's application codes.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("paynet error %d: %s", e.Code, e.Message)
}

func (e Error) err() *Error {
	return &e
}

func (e Error) withData(data any) *Error {
	e.Data = data
	return &e
}

var (
	errParse               = Error{Code: -32700, Message: "Parse error"}
	errInvalidRequest      = Error{Code: -32600, Message: "Invalid Request"}
	errMethodNotFound      = Error{Code: -32601, Message: "Method not found"}
	errInternal            = Error{Code: -32400, Message: "System error"}
	errTransactionExists   = Error{Code: 201, Message: "Transaction already exists"}
	errTransactionCanceled = Error{Code: 202, Message: "Transaction already cancelled"}
	errTransactionNotFound = Error{Code: 203, Message: "Transaction not found"}
	errClientNotFound      = Error{Code: 302, Message: "Client not found"}
	errServiceNotFound     = Error{Code: 305, Message: "Service not found"}
	errMissingParams       = Error{Code: 411, Message: "Required parameters are missing"}
	errInvalidAmount       = Error{Code: 413, Message: "Invalid amount"}
	errInvalidDateFormat   = Error{Code: 414, Message: "Invalid date format"}
	errAccessDenied        = Error{Code: 601, Message: "Access denied"}
)
