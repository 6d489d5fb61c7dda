package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

func TestSettingsCmd_Use(t *testing.T) {
	assert.Equal(t, "settings", settingsCmd.Use)
	assert.Equal(t, "set <key> <value>", settingsSetCmd.Use)
}

func TestSettingsShow_GroupsKeys(t *testing.T) {
	out, err := execute(t, fakeServices(), "settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "[classifier]\n  seed: 0")
	assert.Contains(t, out, "[corpus]\n  folder: (not set)")
	assert.Contains(t, out, "[extraction]\n  chunk_size: 1000")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsSet(t *testing.T) {
	s := fakeServices()
	out, err := execute(t, s, "settings", "set", "extraction.chunk_size", "400")
	require.NoError(t, err)

	assert.Contains(t, out, "Set extraction.chunk_size to 400")
	assert.Equal(t, "400", s.Settings.(*fakeSettings).values["extraction.chunk_size"])
}

func TestSettingsSet_UnknownKey(t *testing.T) {
	_, err := execute(t, fakeServices(), "settings", "set", "search.mode", "full")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSet_NeedsKeyAndValue(t *testing.T) {
	_, err := execute(t, fakeServices(), "settings", "set", "corpus.folder")
	assert.Error(t, err)
}
