package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolume_StrictlyPositive(t *testing.T) {
	p := DefaultParameters()
	for angle := 0.0; angle <= 720; angle += 0.25 {
		require.Greater(t, p.Volume(angle), 0.0, "volume must stay positive at %g°", angle)
	}
}

func TestVolume_TDCMinimum(t *testing.T) {
	p := DefaultParameters()

	v0 := p.Volume(0)
	assert.InDelta(t, v0, p.Volume(360), v0*1e-9)
	assert.InDelta(t, v0, p.Volume(720), v0*1e-9)
	assert.InDelta(t, v0, p.ClearanceVolumeM3(), v0*1e-9)

	for angle := 1.0; angle < 720; angle += 1.0 {
		assert.GreaterOrEqual(t, p.Volume(angle), v0)
	}
}

func TestVolume_BDCMaximum(t *testing.T) {
	p := DefaultParameters()

	v180 := p.Volume(180)
	assert.InDelta(t, v180, p.Volume(540), v180*1e-9)

	for angle := 0.0; angle <= 720; angle += 1.0 {
		assert.LessOrEqual(t, p.Volume(angle), v180*(1+1e-9))
	}
}

func TestVolume_CompressionRatioSpan(t *testing.T) {
	p := DefaultParameters()
	// max/min volume ratio must equal the compression ratio
	assert.InDelta(t, p.CompressionRatio, p.Volume(180)/p.Volume(0), 1e-9)
}

func TestVolumeProfile_MatchesPointwise(t *testing.T) {
	p := DefaultParameters()
	angles := []float64{0, 45, 90, 180, 270, 360, 545, 720}
	vols := p.volumeProfile(angles)

	require.Len(t, vols, len(angles))
	for i, a := range angles {
		assert.Equal(t, p.Volume(a), vols[i])
	}
}
