package endpoint_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

func TestUnknownShapeError(t *testing.T) {
	err := endpoint.UnknownShapeError("Missing")
	assert.ErrorIs(t, err, endpoint.ErrUnknownShape)
	assert.Equal(t, endpoint.CodeUnknownShape, err.CodeValue())
	assert.False(t, err.RetryableStatus())
	assert.Contains(t, err.Error(), `"Missing"`)
}

func TestConnectionError(t *testing.T) {
	cause := errors.New("connection refused")
	err := endpoint.ConnectionError(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.RetryableStatus())
	assert.Equal(t, "E_CONNECTION: connection refused", err.Error())
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("x"), ""},
		{"coded", endpoint.WrapError(endpoint.CodeSinkWrite, true, errors.New("x")), endpoint.CodeSinkWrite},
		{"wrapped", fmt.Errorf("publish: %w", endpoint.ConnectionError(errors.New("x"))), endpoint.CodeConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, endpoint.CodeOf(tt.err))
		})
	}
}

func TestError_NilAndBare(t *testing.T) {
	var e *endpoint.Error
	assert.Equal(t, "", e.Error())
	assert.Equal(t, endpoint.CodeNotInitialized, (&endpoint.Error{Code: endpoint.CodeNotInitialized}).Error())
}
