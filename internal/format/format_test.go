package format

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	assert.Equal(t, "1688.50", Fixed(1688.5, 2))
	assert.Equal(t, "12.35", Fixed("12.345", 2))
	assert.Equal(t, "7", Fixed(7, 0))
	assert.Equal(t, "3.1", Fixed(json.Number("3.14"), 1))
	assert.Equal(t, Placeholder, Fixed(nil, 2))
	assert.Equal(t, Placeholder, Fixed("n/a", 2))
	assert.Equal(t, Placeholder, Fixed(math.NaN(), 2))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "9.98%", Percent(9.98, 2))
	assert.Equal(t, "-1.50%", Percent(-1.5, 2))
	assert.Equal(t, "2.00%", Percent("2%", 2))
	assert.Equal(t, Placeholder, Percent(nil, 2))
}

func TestSignedPercent(t *testing.T) {
	assert.Equal(t, "+1.20%", SignedPercent(1.2, 2))
	assert.Equal(t, "-0.35%", SignedPercent(-0.35, 2))
	assert.Equal(t, "0.00%", SignedPercent(0, 2))
	assert.Equal(t, Placeholder, SignedPercent(struct{}{}, 2))
}

func TestWan(t *testing.T) {
	assert.Equal(t, "12346", Wan(123456789.0))
	assert.Equal(t, "0", Wan(4000))
	assert.Equal(t, Placeholder, Wan(""))
}

func TestFloatAndText(t *testing.T) {
	assert.InDelta(t, 3.5, Float("3.5"), 1e-9)
	assert.Zero(t, Float(nil))

	assert.Equal(t, "贵州茅台", Text("贵州茅台"))
	assert.Equal(t, "3", Text(3.0))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, Placeholder, Text(""))
	assert.Equal(t, Placeholder, Text(nil))
}
