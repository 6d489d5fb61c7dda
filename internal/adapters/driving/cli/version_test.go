package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_ReportsReleaseAndDataDir(t *testing.T) {
	saved := version
	version = "0.4.0"
	t.Cleanup(func() { version = saved })
	t.Setenv("LEXICON_HOME", "/srv/notes/.lexicon")

	out, err := execute(t, &Services{}, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "lexicon 0.4.0")
	assert.Contains(t, out, "Commit: ")
	assert.Contains(t, out, "Go:     go")
	assert.Contains(t, out, "Data:   /srv/notes/.lexicon")
}

func TestVersionCmd_Short(t *testing.T) {
	saved := version
	version = "0.4.0"
	t.Cleanup(func() { version = saved })

	out, err := execute(t, &Services{}, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "0.4.0\n", out)
}

func TestVersionCmd_DevBuildWithoutServices(t *testing.T) {
	out, err := execute(t, nil, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := execute(t, &Services{}, "version", "extra")
	assert.Error(t, err)
}

func TestBuildCommit(t *testing.T) {
	assert.NotEmpty(t, buildCommit())
}
