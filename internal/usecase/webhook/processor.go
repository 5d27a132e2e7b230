package webhook

import (
	"context"
	"errors"
	"net/http"
)

// ErrMissingCredentials is returned by processor constructors when the provider
// credentials are not configured. It is a startup error, never a webhook response.
var ErrMissingCredentials = errors.New("missing provider credentials")

// ErrMissingCallbacks is returned when no payment callbacks are wired.
var ErrMissingCallbacks = errors.New("missing payment callbacks")

// Request is the transport-neutral view of one webhook delivery.
type Request struct {
	Authorization string
	ContentType   string
	Body          []byte
}

// Response is the wire answer: HTTP status plus a JSON-encodable body.
type Response struct {
	StatusCode int
	Body       any
}

func OK(body any) Response {
	return Response{StatusCode: http.StatusOK, Body: body}
}

// Processor handles one provider protocol end to end.
type Processor interface {
	Handle(ctx context.Context, req Request) Response
}
