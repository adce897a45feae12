package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersExplicitID(t *testing.T) {
	t.Setenv(envInstanceID, "api-7")
	t.Setenv("HOSTNAME", "pod-abc")
	assert.Equal(t, "api-7", GetID("local"))
}

func TestGetIDFallsBackToHostname(t *testing.T) {
	t.Setenv(envInstanceID, "")
	t.Setenv("HOSTNAME", "pod-abc")
	assert.Equal(t, "pod-abc", GetID("local"))

	t.Setenv("HOSTNAME", "")
	assert.Equal(t, "local", GetID("local"))
}
