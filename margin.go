package facepipe

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MarginValue is a single per-side margin, either an absolute pixel count or
// a percentage of the coordinate it is applied to.
type MarginValue struct {
	percent bool
	value   int
}

// Pixels returns an absolute margin of n pixels.
func Pixels(n int) MarginValue {
	return MarginValue{value: n}
}

// Percent returns a relative margin of p percent.
func Percent(p int) MarginValue {
	return MarginValue{percent: true, value: p}
}

// ParseMarginValue converts a textual margin to a MarginValue. Plain integers
// are treated as absolute pixel counts, values with a trailing percent sign
// (e.g. "30%") as percentages. Negative margins are a configuration error.
func ParseMarginValue(s string) (MarginValue, error) {
	s = strings.TrimSpace(s)

	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.Atoi(p)
		if err != nil {
			return MarginValue{}, errors.Wrapf(err, "invalid percentage margin %q", s)
		}
		if v < 0 {
			return MarginValue{}, errors.Errorf("negative percentage margin %q", s)
		}
		return Percent(v), nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return MarginValue{}, errors.Wrapf(err, "invalid margin %q", s)
	}
	if v < 0 {
		return MarginValue{}, errors.Errorf("negative margin %q", s)
	}
	return Pixels(v), nil
}

// resolve converts the margin to a pixel count. Percentages are computed
// against the coordinate value the margin is applied to, not against the
// image dimension. This mirrors the historical behavior of the pipeline and
// is kept for compatibility; see DESIGN.md.
func (m MarginValue) resolve(base int) int {
	if m.percent {
		return base * m.value / 100
	}
	return m.value
}

// Margin describes how far beyond the detected face box the final crop
// reaches on each side. Immutable once constructed.
type Margin struct {
	Top, Right, Left, Bottom MarginValue
}

// NewMargin builds a Margin from four textual per-side values in
// top, right, left, bottom order.
func NewMargin(top, right, left, bottom string) (Margin, error) {
	var (
		m   Margin
		err error
	)
	if m.Top, err = ParseMarginValue(top); err != nil {
		return Margin{}, err
	}
	if m.Right, err = ParseMarginValue(right); err != nil {
		return Margin{}, err
	}
	if m.Left, err = ParseMarginValue(left); err != nil {
		return Margin{}, err
	}
	if m.Bottom, err = ParseMarginValue(bottom); err != nil {
		return Margin{}, err
	}
	return m, nil
}

// DefaultMargin returns the margin configuration used by the reference
// pipeline: 30% on top, 30px on both the right and left side and 5px on
// the bottom.
func DefaultMargin() Margin {
	return Margin{
		Top:    Percent(30),
		Right:  Pixels(30),
		Left:   Pixels(30),
		Bottom: Pixels(5),
	}
}

// Recalculate expands the box by the per-side margins, grows it to the target
// aspect ratio and clamps the result against the image dimensions. The
// returned box always satisfies 0 <= YMin <= YMax <= height and
// 0 <= XMin <= XMax <= width.
func (m Margin) Recalculate(b Box, height, width int, r Ratio) Box {
	b.YMin -= m.Top.resolve(b.YMin)
	b.XMin -= m.Left.resolve(b.XMin)
	b.YMax += m.Bottom.resolve(b.YMax)
	b.XMax += m.Right.resolve(b.XMax)

	b = MaintainRatio(b, r)

	return b.ClampTo(height, width)
}
