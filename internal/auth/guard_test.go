package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-portal/pkg/registry"
)

func TestGuard_Check(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	guard := NewGuard(reg)

	tests := []struct {
		name         string
		token        string
		path         string
		wantRedirect string
		wantOK       bool
	}{
		{"anonymous to private view", "", "/jobs", "/login", false},
		{"anonymous to nested private view", "", "/jobs/3", "/login", false},
		{"anonymous to root", "", "/", "/login", false},
		{"anonymous to login", "", "/login", "", true},
		{"signed in to login", "tok", "/login", "/jobs", false},
		{"signed in to private view", "tok", "/applications", "", true},
		{"any token counts", "expired-or-garbage", "/subscription", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect, ok := guard.Check(tt.token, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRedirect, redirect)
		})
	}
}
