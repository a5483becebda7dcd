package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("sync", "Bucket name is required"), http.StatusBadRequest},
		{"not found", NotFound("update", "Tree not found"), http.StatusNotFound},
		{"store", Store("query", errors.New("connection refused")), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("handler: %w", Validation("x", "bad")), http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Tree not found", Message(NotFound("update", "Tree not found")))
	assert.Equal(t, "Database error: connection refused", Message(Store("query", errors.New("connection refused"))))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("update", "Tree not found"))
	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: KindStore}))
	assert.Equal(t, KindNotFound, KindOf(err))
}
