package pkg

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		err := NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
		if err.Error() != "PAYMENT_NOT_FOUND: Payment not found" {
			t.Fatalf("unexpected message: %s", err.Error())
		}
		if err.Unwrap() != nil {
			t.Fatalf("expected no cause, got %v", err.Unwrap())
		}
		body := err.ToHTTPError()
		if body.Code != "PAYMENT_NOT_FOUND" || body.Message != "Payment not found" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("dynamodb timeout")
		err := NewDomainError("INTERNAL_ERROR", "An internal error occurred", cause, http.StatusInternalServerError)
		if !errors.Is(err, cause) {
			t.Fatalf("expected cause to be wrapped")
		}
		if err.ToHTTPError().Message != "An internal error occurred" {
			t.Fatalf("expected cause to stay out of the body, got %+v", err.ToHTTPError())
		}
	})
}
