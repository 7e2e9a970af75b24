package osmcodec

import (
	"io"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

// Color is the structured `colour=*` field, ported from
// osm_structures/structured_elements/colour.rs: one byte, either a
// standard-color index (0-15) or a 6x6x6 quantized RGB cube index
// (16-231) for values the 16-entry table doesn't cover.
type Color struct {
	standard standardColor
	isHex    bool
	r, g, b  byte // 0..5 each, quantized
}

type standardColor byte

const (
	ColorBlack standardColor = iota
	ColorBrown
	ColorYellow
	ColorGreen
	ColorGray
	ColorGrey
	ColorWhite
	ColorBlue
	ColorOrange
	ColorSilver
	ColorPurple
	ColorDarkGreen
	ColorBeige
	ColorMaroon
	ColorRed
	ColorRedWhite
)

var standardColorNames = map[string]standardColor{
	"black":     ColorBlack,
	"brown":     ColorBrown,
	"yellow":    ColorYellow,
	"green":     ColorGreen,
	"gray":      ColorGray,
	"grey":      ColorGrey,
	"white":     ColorWhite,
	"blue":      ColorBlue,
	"orange":    ColorOrange,
	"silver":    ColorSilver,
	"purple":    ColorPurple,
	"darkgreen": ColorDarkGreen,
	"beige":     ColorBeige,
	"maroon":    ColorMaroon,
	"red":       ColorRed,
	"red/white": ColorRedWhite,
}

// cubeSteps are the 6 RGB component values the 6x6x6 cube quantizes
// hex colors to, matching the source's [0x00,0x33,0x66,0x99,0xcc,0xff].
var cubeSteps = [6]byte{0x00, 0x33, 0x66, 0x99, 0xcc, 0xff}

func (Color) fieldTagOf() fieldTag { return fieldTagColor }

// ColorFromTag parses an OSM colour tag value, recognizing the 16
// standard names or a `#rrggbb` hex value whose components all land
// on one of the 6 cube steps.
func ColorFromTag(value string) (Color, bool) {
	if c, ok := standardColorNames[value]; ok {
		return Color{standard: c}, true
	}

	if len(value) == 7 && value[0] == '#' {
		r, rok := hexByte(value[1:3])
		g, gok := hexByte(value[3:5])
		b, bok := hexByte(value[5:7])
		if !rok || !gok || !bok {
			return Color{}, false
		}

		ri, riok := cubeIndex(r)
		gi, giok := cubeIndex(g)
		bi, biok := cubeIndex(b)
		if !riok || !giok || !biok {
			return Color{}, false
		}

		return Color{isHex: true, r: ri, g: gi, b: bi}, true
	}

	return Color{}, false
}

func hexByte(s string) (byte, bool) {
	var v int
	for i := 0; i < 2; i++ {
		c := s[i]
		var n int
		switch {
		case c >= '0' && c <= '9':
			n = int(c - '0')
		case c >= 'a' && c <= 'f':
			n = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			n = int(c-'A') + 10
		default:
			return 0, false
		}
		v = v*16 + n
	}
	return byte(v), true
}

func cubeIndex(v byte) (byte, bool) {
	for i, step := range cubeSteps {
		if step == v {
			return byte(i), true
		}
	}
	return 0, false
}

// Encode writes Color's single byte form.
func (c Color) Encode(w io.Writer) error {
	var b byte
	if c.isHex {
		b = c.r*36 + c.g*6 + c.b + 16
	} else {
		b = byte(c.standard)
	}
	_, err := w.Write([]byte{b})
	return err
}

// DecodeColor is the inverse of Color.Encode.
func DecodeColor(r io.Reader) (Color, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Color{}, gerrors.NewMalformedInputError(err, "color", 0)
	}

	if b[0] < 16 {
		return Color{standard: standardColor(b[0])}, nil
	}

	cube := b[0] - 16
	return Color{isHex: true, r: cube / 36, g: (cube / 6) % 6, b: cube % 6}, nil
}
