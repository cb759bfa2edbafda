package govee

import (
	"errors"
	"testing"
)

func TestKindForSKU(t *testing.T) {
	tests := []struct {
		name    string
		sku     string
		want    Kind
		wantErr bool
	}{
		{
			name: "RGB bulb family",
			sku:  "H6002",
			want: KindRGBBulb,
		},
		{
			name: "white bulb exception",
			sku:  "H6085",
			want: KindWhiteBulb,
		},
		{
			name: "another RGB bulb",
			sku:  "H6089",
			want: KindRGBBulb,
		},
		{
			name: "LED strip family",
			sku:  "H6159",
			want: KindLEDStrip,
		},
		{
			name: "long strip SKU",
			sku:  "H61593",
			want: KindLEDStrip,
		},
		{
			name:    "unmodelled family",
			sku:     "H5081",
			wantErr: true,
		},
		{
			name:    "missing prefix",
			sku:     "X6002",
			wantErr: true,
		},
		{
			name:    "too short",
			sku:     "H60",
			wantErr: true,
		},
		{
			name:    "empty",
			sku:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindForSKU(tt.sku)

			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSKU) {
					t.Fatalf("KindForSKU(%q) error = %v, want ErrUnknownSKU", tt.sku, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("KindForSKU(%q) error = %v", tt.sku, err)
			}
			if got != tt.want {
				t.Errorf("KindForSKU(%q) = %v, want %v", tt.sku, got, tt.want)
			}
		})
	}
}

func TestKind_SupportsColor(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindWhiteBulb, false},
		{KindRGBBulb, true},
		{KindLEDStrip, true},
	}

	for _, tt := range tests {
		if got := tt.kind.SupportsColor(); got != tt.want {
			t.Errorf("%s.SupportsColor() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestKind_FriendlyName(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindWhiteBulb, "White bulb"},
		{KindRGBBulb, "RGB bulb"},
		{KindLEDStrip, "RGB LED strip"},
		{Kind("something"), "Unknown device"},
	}

	for _, tt := range tests {
		if got := tt.kind.FriendlyName(); got != tt.want {
			t.Errorf("%q.FriendlyName() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
