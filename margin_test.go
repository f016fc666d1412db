package facepipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMargin_ParseShouldAcceptAbsoluteAndPercentValues(t *testing.T) {
	testCases := []struct {
		input string
		base  int
		want  int
	}{
		{input: "30", base: 100, want: 30},
		{input: "0", base: 100, want: 0},
		{input: "10%", base: 100, want: 10},
		{input: "10%", base: 7, want: 0},
		{input: "30%", base: 55, want: 16},
		{input: "100%", base: 42, want: 42},
	}

	for _, tc := range testCases {
		m, err := ParseMarginValue(tc.input)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, m.resolve(tc.base), "resolve(%d, %q)", tc.base, tc.input)
	}
}

func TestMargin_ParseShouldRejectInvalidValues(t *testing.T) {
	for _, input := range []string{"-5", "-5%", "abc", "%", "30px"} {
		_, err := ParseMarginValue(input)
		assert.Error(t, err, "%q should be rejected", input)
	}
}

func TestMargin_PercentShouldUseTheCoordinateAsBase(t *testing.T) {
	// The percentage is computed against the coordinate value itself,
	// not against the image dimension.
	m := Margin{Top: Percent(50), Right: Pixels(0), Left: Pixels(0), Bottom: Pixels(0)}

	out := m.Recalculate(Box{YMin: 40, XMin: 10, YMax: 60, XMax: 30}, 1000, 1000, Ratio{1, 1})

	// top margin = 50% of y_min = 20.
	assert.Equal(t, 20, out.YMin)
}

func TestMargin_RecalculateShouldExpandRatioCorrectAndClamp(t *testing.T) {
	m, err := NewMargin("2", "4", "6", "8")
	assert.NoError(t, err)

	box := Box{YMin: 20, XMin: 30, YMax: 60, XMax: 50}
	out := m.Recalculate(box, 100, 100, Ratio{1, 1})

	// Expansion: y 18..68, x 24..54. The 50x30 box then grows to 50x50,
	// 10 columns on each side.
	assert.Equal(t, Box{YMin: 18, XMin: 14, YMax: 68, XMax: 64}, out)
}

func TestMargin_RecalculateShouldClampToImageBounds(t *testing.T) {
	m, err := NewMargin("50%", "100", "100", "100")
	assert.NoError(t, err)

	out := m.Recalculate(Box{YMin: 10, XMin: 10, YMax: 90, XMax: 90}, 100, 100, Ratio{1, 1})

	assert.GreaterOrEqual(t, out.YMin, 0)
	assert.GreaterOrEqual(t, out.XMin, 0)
	assert.LessOrEqual(t, out.YMax, 100)
	assert.LessOrEqual(t, out.XMax, 100)
	assert.LessOrEqual(t, out.YMin, out.YMax)
	assert.LessOrEqual(t, out.XMin, out.XMax)
}

func TestMargin_DefaultShouldMatchReferenceConfiguration(t *testing.T) {
	m := DefaultMargin()

	assert.Equal(t, Percent(30), m.Top)
	assert.Equal(t, Pixels(30), m.Right)
	assert.Equal(t, Pixels(30), m.Left)
	assert.Equal(t, Pixels(5), m.Bottom)
}
