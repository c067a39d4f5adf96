package cfg

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	v, err := BindFlags(fs)
	require.NoError(t, err)

	var c Config
	require.NoError(t, v.Unmarshal(&c, viper.DecodeHook(DecodeHook())))

	assert.Equal(t, "loopback", c.Transport.Kind)
	assert.Equal(t, 256, c.Session.MaxFileNodesPerSession)
	assert.Equal(t, 32, c.Session.MaxCachedOpenNodes)
	assert.False(t, c.Session.AlwaysUseHostTime)
	assert.Equal(t, "text", c.Logging.Format)
}

func TestBindFlagsOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	v, err := BindFlags(fs)
	require.NoError(t, err)
	require.NoError(t, fs.Parse([]string{"--max-cached-open-nodes=8", "--log-severity=DEBUG"}))

	var c Config
	require.NoError(t, v.Unmarshal(&c, viper.DecodeHook(DecodeHook())))

	assert.Equal(t, 8, c.Session.MaxCachedOpenNodes)
	assert.Equal(t, DebugLogSeverity, c.Logging.Severity)
}

func TestLogSeverityRankOrdersLevels(t *testing.T) {
	assert.Less(t, TraceLogSeverity.Rank(), DebugLogSeverity.Rank())
	assert.Less(t, ErrorLogSeverity.Rank(), OffLogSeverity.Rank())
	assert.Equal(t, -1, LogSeverity("BOGUS").Rank())
}
