package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/services"
)

func TestSettingsShow_Defaults(t *testing.T) {
	setupServices(t)

	out, err := execute(t, "settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "[prepare]")
	assert.Contains(t, out, "[corpus]")
	assert.Contains(t, out, "prepare.type")
	assert.Contains(t, out, "direct")
	assert.Contains(t, out, "(all)")
	assert.Contains(t, out, domain.DefaultCorpusURL)
	assert.Contains(t, out, "(unlimited)")
	// data and save folders are unset
	assert.Contains(t, out, "Warning:")
}

func TestSettingsShow_Configured(t *testing.T) {
	_, cfgStore := setupServices(t)
	require.NoError(t, cfgStore.Set(services.KeyDataFolder, "/data"))
	require.NoError(t, cfgStore.Set(services.KeySaveFolder, "/save"))
	require.NoError(t, cfgStore.Set(services.KeyTrainDomains, []string{"timer", "alarm"}))
	require.NoError(t, cfgStore.Set(services.KeyCorpusRateLimit, 256))

	out, err := execute(t, "settings")
	require.NoError(t, err)

	assert.Contains(t, out, "/data")
	assert.Contains(t, out, "timer,alarm")
	assert.Contains(t, out, "256")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsSet(t *testing.T) {
	_, cfgStore := setupServices(t)

	out, err := execute(t, "settings", "set", services.KeyFlatIntents, "true")
	require.NoError(t, err)
	assert.Contains(t, out, "Set prepare.flat_intents = true")
	assert.True(t, cfgStore.GetBool(services.KeyFlatIntents))
}

func TestSettingsSet_Invalid(t *testing.T) {
	setupServices(t)

	_, err := execute(t, "settings", "set", "prepare.colour", "blue")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "settings", "set", services.KeyTrainDomains, "timer,cooking")
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
}

func TestSettingsSet_RequiresTwoArgs(t *testing.T) {
	setupServices(t)

	_, err := execute(t, "settings", "set", services.KeyType)
	assert.Error(t, err)
}

func TestSettings_NotConfigured(t *testing.T) {
	setupServices(t)
	settingsService = nil

	_, err := execute(t, "settings", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
