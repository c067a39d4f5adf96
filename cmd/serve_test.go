package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artn/hgfsd/internal/cfg"
)

func TestBuildShareRegistryMapsReadOnlyFlag(t *testing.T) {
	reg, err := buildShareRegistry([]cfg.ShareConfig{
		{Name: "docs", RootDir: "/srv/docs", ReadOnly: true, CaseSensitive: true},
	})
	require.NoError(t, err)

	info, err := reg.Get("docs")
	require.NoError(t, err)
	assert.True(t, info.ReadPermissions)
	assert.False(t, info.WritePermissions)
	assert.True(t, info.CaseSensitive)
}

func TestBuildTransportDefaultsToLoopback(t *testing.T) {
	tr, err := buildTransport(cfg.TransportConfig{})
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.NoError(t, tr.Close())
}

func TestBuildTransportRejectsUnknownKind(t *testing.T) {
	_, err := buildTransport(cfg.TransportConfig{Kind: "carrier-pigeon"})
	assert.Error(t, err)
}
