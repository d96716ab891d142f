package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	if de.Code != "NOT_FOUND" || de.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected NOT_FOUND/404, got %s/%d", de.Code, de.HTTPStatus)
	}
}

func TestToDomainErrorPassesThroughDomainError(t *testing.T) {
	original := NewValidationError("bad input", map[string]any{"field": "title"})

	de := ToDomainError(original)
	if de.Code != "VALIDATION_FAILED" || de.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected VALIDATION_FAILED/400, got %s/%d", de.Code, de.HTTPStatus)
	}
	if de.Details["field"] != "title" {
		t.Errorf("details lost: %v", de.Details)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	if de.Code != "INTERNAL_ERROR" || de.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected INTERNAL_ERROR/500, got %s/%d", de.Code, de.HTTPStatus)
	}
}

func TestStoreFailureCarriesStepAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreFailure("delete superseded event 7", cause)

	de := ToDomainError(err)
	if de.Code != "STORE_FAILURE" {
		t.Errorf("expected STORE_FAILURE, got %s", de.Code)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be unwrappable")
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}
