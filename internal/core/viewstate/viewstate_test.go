package viewstate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

func TestViewState_Defaults(t *testing.T) {
	v := New()
	assert.Equal(t, 1.0, v.Zoom())
	assert.Equal(t, 1.0, v.InverseScale())
	assert.False(t, v.PanEnabled())
}

func TestViewState_ZoomInSaturates(t *testing.T) {
	v := New()
	for i := 0; i < 8; i++ {
		v.ZoomIn()
	}
	assert.Equal(t, MaxZoom, v.Zoom())
	assert.Equal(t, 0.5, v.InverseScale())
	assert.True(t, v.PanEnabled())
}

func TestViewState_ZoomOutSaturates(t *testing.T) {
	v := New()
	for i := 0; i < 8; i++ {
		v.ZoomOut()
	}
	assert.Equal(t, MinZoom, v.Zoom())
	assert.Equal(t, 2.0, v.InverseScale())
	assert.False(t, v.PanEnabled())
}

func TestViewState_Steps(t *testing.T) {
	v := New()
	assert.InDelta(t, 1.2, v.ZoomIn(), 1e-9)
	assert.InDelta(t, 1.4, v.ZoomIn(), 1e-9)
	assert.InDelta(t, 1.2, v.ZoomOut(), 1e-9)
	assert.Equal(t, 1.0, v.Reset())
}

func TestViewState_SetZoom(t *testing.T) {
	v := New()

	z, err := v.SetZoom(1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, z)

	z, err = v.SetZoom(10)
	require.NoError(t, err)
	assert.Equal(t, MaxZoom, z)

	z, err = v.SetZoom(0.1)
	require.NoError(t, err)
	assert.Equal(t, MinZoom, z)

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := v.SetZoom(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidZoom)
	}
	assert.Equal(t, MinZoom, v.Zoom(), "rejected levels leave the zoom unchanged")
	assert.Equal(t, domain.ViewTransform{ZoomLevel: MinZoom}, v.Transform())
}
