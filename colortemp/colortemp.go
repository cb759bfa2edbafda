// Package colortemp converts colour temperatures in kelvin to approximate
// RGB values.
//
// The conversion follows Tanner Helland's black-body approximation
// (https://tannerhelland.com/2012/09/18/convert-temperature-rgb-algorithm-code.html),
// a piecewise fit against CIE data that is accurate to a few units per
// channel across the usable range. It is used to emulate a "set colour
// temperature" command on devices whose wire protocol only understands RGB.
//
// The conversion is pure and deterministic: the same kelvin input always
// yields the same RGB output, and there are no error conditions.
package colortemp

import "math"

// Temperature bounds of the approximation. Inputs outside this range are
// clamped before conversion.
const (
	MinKelvin = 1000
	MaxKelvin = 40000
)

// ToRGB converts a colour temperature in kelvin to an approximate RGB
// triple. Each channel is in the range 0-255.
//
// Inputs below MinKelvin or above MaxKelvin are clamped. Around 6600K both
// the red and blue curves meet at 255, producing neutral white.
func ToRGB(kelvin int) (r, g, b uint8) {
	t := float64(clampKelvin(kelvin)) / 100

	var red, green, blue float64

	if t <= 66 {
		red = 255
	} else {
		red = clampChannel(329.698727446 * math.Pow(t-60, -0.1332047592))
	}

	if t <= 66 {
		green = clampChannel(99.4708025861*math.Log(t) - 161.1195681661)
	} else {
		green = clampChannel(288.1221695283 * math.Pow(t-60, -0.0755148492))
	}

	switch {
	case t >= 66:
		blue = 255
	case t <= 19:
		blue = 0
	default:
		blue = clampChannel(138.5177312231*math.Log(t-10) - 305.0447927307)
	}

	return uint8(math.Round(red)), uint8(math.Round(green)), uint8(math.Round(blue))
}

// clampKelvin bounds a kelvin value to the supported range.
func clampKelvin(kelvin int) int {
	if kelvin < MinKelvin {
		return MinKelvin
	}
	if kelvin > MaxKelvin {
		return MaxKelvin
	}
	return kelvin
}

// clampChannel bounds a channel value to [0, 255].
func clampChannel(v float64) float64 {
	return math.Min(math.Max(v, 0), 255)
}
