package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("project not found"), http.StatusNotFound},
		{"conflict", Conflict("membership already exists"), http.StatusBadRequest},
		{"invariant", Invariant("cannot remove the last owner of the project"), http.StatusBadRequest},
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("invalid token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not a member"), http.StatusForbidden},
		{"internal", Internal(errors.New("connection reset")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("get project: %w", NotFound("project not found")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("delete membership: %w", Invariant("cannot remove the last owner of the project"))

	assert.True(t, errors.Is(err, ErrInvariant))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindInvariant, KindOf(err))
}

func TestInternalKeepsMessageAndKind(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Internal(cause)

	assert.Equal(t, "duplicate key", err.Error())
	assert.ErrorIs(t, err, cause)

	nf := NotFound("user not found")
	assert.Same(t, nf, Internal(nf))
	assert.Nil(t, Internal(nil))
}
