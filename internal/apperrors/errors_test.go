package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransportError
		expected string
	}{
		{"status and message", &TransportError{Service: "googlebooks", StatusCode: 500, Message: "boom"}, "googlebooks: HTTP 500: boom"},
		{"status only", &TransportError{Service: "rakuten", StatusCode: 429}, "rakuten: HTTP 429"},
		{"wrapped", &TransportError{Service: "mirror", Err: errors.New("dial tcp: refused")}, "mirror: dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestClassification(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("publish: %w", &PartialWriteError{Err: &TransportError{Service: "mirror", Err: cause}})

	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsTransport(&StoreError{Op: "insert", Err: cause}))

	wrapped := fmt.Errorf("get summary: %w", ErrNotFound)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "not found", Message(fmt.Errorf("x: %w", ErrNotFound)))
	assert.Equal(t, "local store failure", Message(&StoreError{Op: "upsert", Err: errors.New("disk I/O error")}))
	assert.Equal(t, "invalid uid: required", Message(&ValidationError{Field: "uid", Reason: "required"}))
	assert.Contains(t, Message(&PartialWriteError{Err: &TransportError{Service: "mirror", Message: "timeout"}}), "mirror not updated")
}
