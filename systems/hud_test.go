package systems

import (
	"testing"

	cfg "github.com/automoto/doomerang-audio/config"
	"github.com/automoto/doomerang-audio/fonts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutToggles(t *testing.T) {
	require.NoError(t, fonts.LoadDefaults())

	labels := layoutToggles(fonts.Regular.Get(), []CategoryToggle{
		{Key: "sfx", Enabled: false},
		{Key: "music", Enabled: true},
	})

	require.Len(t, labels, 2)
	assert.Equal(t, "music on", labels[0].text)
	assert.Equal(t, cfg.Green, labels[0].clr)
	assert.Equal(t, hudMargin, labels[0].x)
	assert.Equal(t, "sfx off", labels[1].text)
	assert.Equal(t, cfg.Red, labels[1].clr)
	assert.Greater(t, labels[1].x, labels[0].x+hudLabelGap)
}

func TestLayoutToggles_Empty(t *testing.T) {
	require.NoError(t, fonts.LoadDefaults())
	assert.Empty(t, layoutToggles(fonts.Regular.Get(), nil))
}
