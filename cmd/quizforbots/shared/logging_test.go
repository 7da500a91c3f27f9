package shared

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	logger, err := SetupLogger(false, "warn")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger, err = SetupLogger(true, "warn")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	logger, err = SetupLogger(false, "")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	_, err = SetupLogger(false, "loud")
	assert.Error(t, err)
}
