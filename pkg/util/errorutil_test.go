package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error kept", NewInvalidTransition("OPEN", "OPEN"), CodeInvalidTransition, http.StatusUnprocessableEntity},
		{"wrapped not found", fmt.Errorf("load: %w", ErrNotFound), CodeNotFound, http.StatusNotFound},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"malformed uuid", &pgconn.PgError{Code: "22P02"}, CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "clients_email_key"}, CodeInvalidState, http.StatusConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, CodeInvalidState, http.StatusConflict},
		{"unknown", errors.New("connection reset"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFound("ticket", nil))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeInvalidState))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}
