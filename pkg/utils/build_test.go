package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/mod/semver"
)

func TestVersionIsSemantic(t *testing.T) {
	if Version == unknownBuildInfo {
		t.Skip("Version wasn't set through -ldflags.")
	}
	assert.Truef(t, semver.IsValid(Version), "Version %s is not a valid semantic version", Version)
}

func TestUptime(t *testing.T) {
	assert.False(t, StartTime.IsZero())
	assert.Positive(t, Uptime())
}
