package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings_NonEmptyAndContainParts(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)
	assert.NotEmpty(t, AppName)

	short := Short()
	assert.Contains(t, short, Version)
	assert.Contains(t, short, Revision)

	shortApp := ShortWithApp()
	assert.True(t, strings.HasPrefix(shortApp, AppName+" "))

	detailed := Detailed()
	assert.Contains(t, detailed, Version)
	assert.Contains(t, detailed, "/") // GOOS/GOARCH part
}

func TestApplyBuildInfo_PopulatesDefaults(t *testing.T) {
	origVersion, origRevision, origBuildDate := Version, Revision, BuildDate
	t.Cleanup(func() {
		Version, Revision, BuildDate = origVersion, origRevision, origBuildDate
	})

	Version = "0.1.0-dev"
	Revision = "HEAD"
	BuildDate = ""

	applyBuildInfo("v1.2.3", map[string]string{
		"vcs.revision": "abc1234",
		"vcs.modified": "true",
		"vcs.time":     "2026-01-02T03:04:05Z",
	})

	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "abc1234-dirty", Revision)
	assert.Equal(t, "2026-01-02T03:04:05Z", BuildDate)
}
