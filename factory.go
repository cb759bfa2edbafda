package govee

import "fmt"

// Kind is the capability tag of a device. It selects which state fields a
// device carries and which commands it accepts. All supported kinds are
// lights; RGB kinds additionally support colour and colour temperature.
type Kind string

// Supported device kinds.
const (
	KindWhiteBulb Kind = "white_bulb"
	KindRGBBulb   Kind = "rgb_bulb"
	KindLEDStrip  Kind = "led_strip"
)

// FriendlyName returns a human-readable name for the kind.
func (k Kind) FriendlyName() string {
	switch k {
	case KindWhiteBulb:
		return "White bulb"
	case KindRGBBulb:
		return "RGB bulb"
	case KindLEDStrip:
		return "RGB LED strip"
	default:
		return "Unknown device"
	}
}

// SupportsColor reports whether devices of this kind accept colour and
// colour-temperature commands.
func (k Kind) SupportsColor() bool {
	return k == KindRGBBulb || k == KindLEDStrip
}

// skuPrefix is the product-family prefix every supported SKU starts with.
const skuPrefix = 'H'

// minSKULength is the shortest SKU the vendor assigns (prefix + two-digit
// family + at least two model digits).
const minSKULength = 5

// familyKinds maps the two-character family code following the prefix to a
// kind selector. Extend device support by adding family entries here, never
// by branching on SKUs elsewhere.
var familyKinds = map[string]func(sku string) Kind{
	"60": func(sku string) Kind {
		// The H6085 is the only known bulb without an RGB channel.
		if sku == "H6085" {
			return KindWhiteBulb
		}
		return KindRGBBulb
	},
	"61": func(string) Kind {
		return KindLEDStrip
	},
}

// KindForSKU maps a vendor SKU to a device kind.
//
// SKUs shorter than five characters, SKUs without the vendor prefix, and
// SKUs from unmodelled families all return ErrUnknownSKU. Callers are
// expected to skip such devices rather than fail the whole operation.
func KindForSKU(sku string) (Kind, error) {
	if len(sku) < minSKULength || sku[0] != skuPrefix {
		return "", fmt.Errorf("%w: %q", ErrUnknownSKU, sku)
	}

	selector, ok := familyKinds[sku[1:3]]
	if !ok {
		return "", fmt.Errorf("%w: %q (family %s)", ErrUnknownSKU, sku, sku[1:3])
	}

	return selector(sku), nil
}
