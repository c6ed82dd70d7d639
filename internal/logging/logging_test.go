package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zap.AtomicLevel{
		"":        zap.NewAtomicLevelAt(zap.InfoLevel),
		"DEBUG":   zap.NewAtomicLevelAt(zap.DebugLevel),
		"warning": zap.NewAtomicLevelAt(zap.WarnLevel),
		"error":   zap.NewAtomicLevelAt(zap.ErrorLevel),
	}
	for input, want := range cases {
		logger, atom, err := New(input, "json")
		require.NoError(t, err, input)
		assert.Equal(t, want.Level(), atom.Level(), input)
		assert.True(t, logger.Core().Enabled(want.Level()), input)
	}
}

func TestNew_AtomicLevelIsLive(t *testing.T) {
	logger, atom, err := New("info", "console")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))

	atom.SetLevel(zap.DebugLevel)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNew_Rejects(t *testing.T) {
	_, _, err := New("loud", "json")
	assert.ErrorContains(t, err, "level")

	_, _, err = New("info", "xml")
	assert.ErrorContains(t, err, "unknown format")
}
