package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/aggregate"
)

func TestProportion_PNG(t *testing.T) {
	c := aggregate.NewLabeler(nil).ProportionChart(types.AllSites, types.OutcomeSummary{1: 24, 0: 32})

	var buf bytes.Buffer
	require.NoError(t, Proportion(&buf, c, Size{Width: 640, Height: 480}))
	assert.Equal(t, "image/png", mimetype.Detect(buf.Bytes()).String())

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
}

func TestProportion_Empty(t *testing.T) {
	c := aggregate.NewLabeler(nil).ProportionChart("KSC LC-39A", types.OutcomeSummary{})
	var buf bytes.Buffer
	assert.ErrorIs(t, Proportion(&buf, c, Size{}), ErrEmpty)
	assert.Zero(t, buf.Len())
}

func TestCorrelation_PNG(t *testing.T) {
	pts := aggregate.ProjectCorrelationPoints([]types.LaunchRecord{
		{Site: "A", PayloadMassKg: 500, OutcomeClass: 0, BoosterCategory: "v1.1"},
		{Site: "A", PayloadMassKg: 2490, OutcomeClass: 1, BoosterCategory: "FT"},
		{Site: "B", PayloadMassKg: 3600, OutcomeClass: 1, BoosterCategory: "FT"},
		{Site: "B", PayloadMassKg: 9600, OutcomeClass: 1, BoosterCategory: "B4"},
	})

	var buf bytes.Buffer
	err := Correlation(&buf, aggregate.CorrelationChart(pts), Size{}, types.DefaultPayloadRange())
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, DefaultHeight, cfg.Height)
}

func TestCorrelation_SinglePoint(t *testing.T) {
	pts := aggregate.ProjectCorrelationPoints([]types.LaunchRecord{
		{Site: "A", PayloadMassKg: 500, OutcomeClass: 1, BoosterCategory: "FT"},
	})
	var buf bytes.Buffer
	require.NoError(t, Correlation(&buf, aggregate.CorrelationChart(pts), Size{}, types.DefaultPayloadRange()))
}

func TestCorrelation_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := Correlation(&buf, aggregate.CorrelationChart(nil), Size{}, types.DefaultPayloadRange())
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSize_Clamp(t *testing.T) {
	assert.Equal(t, Size{Width: DefaultWidth, Height: DefaultHeight}, Size{}.Clamp())
	assert.Equal(t, Size{Width: MinSide, Height: MaxSide}, Size{Width: 10, Height: 99999}.Clamp())
	assert.Equal(t, Size{Width: 300, Height: 400}, Size{Width: 300, Height: 400}.Clamp())
}
