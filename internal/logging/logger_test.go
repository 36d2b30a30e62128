package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		env, level string
		debug      bool
		info       bool
	}{
		{"development", "", true, true},
		{"production", "", false, true},
		{"production", "debug", true, true},
		{"development", "warn", false, false},
		{"development", "nonsense", true, true},
	}
	for _, tt := range tests {
		logger, err := New(tt.env, tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.debug, logger.Core().Enabled(zap.DebugLevel), "%s/%s debug", tt.env, tt.level)
		assert.Equal(t, tt.info, logger.Core().Enabled(zap.InfoLevel), "%s/%s info", tt.env, tt.level)
	}
}
