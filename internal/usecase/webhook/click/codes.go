package click

import "fmt"

// Code is the signed error field of every Click answer; 0 is success.
type Code int

const (
	CodeSuccess              Code = 0
	CodeSignCheckFailed      Code = -1
	CodeInvalidAmount        Code = -2
	CodeActionNotFound       Code = -3
	CodeAlreadyPaid          Code = -4
	CodeUserNotFound         Code = -5
	CodeIDMismatch           Code = -6
	CodeInternalError        Code = -7
	CodeBadRequest           Code = -8
	CodeTransactionCancelled Code = -9
)

var notes = map[Code]string{
	CodeSuccess:              "Success",
	CodeSignCheckFailed:      "SIGN CHECK FAILED!",
	CodeInvalidAmount:        "Incorrect parameter amount",
	CodeActionNotFound:       "Action not found",
	CodeAlreadyPaid:          "Already paid",
	CodeUserNotFound:         "User does not exist",
	CodeIDMismatch:           "Transaction does not exist",
	CodeInternalError:        "Failed to update user",
	CodeBadRequest:           "Error in request from click",
	CodeTransactionCancelled: "Transaction cancelled",
}

func (c Code) Note() string {
	if note, ok := notes[c]; ok {
		return note
	}
	return fmt.Sprintf("error %d", int(c))
}

func (c Code) Error() string {
	return fmt.Sprintf("click error %d: %s", int(c), c.Note())
}
