package source

import "testing"

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"囧高", true},
		{"囧只口", true},
		{"囧", false}, // the marker alone is a real character
		{"高", false},
		{"", false},
		{"water", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.in); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestTierString(t *testing.T) {
	if TierPrimary.String() != "primary" || TierSecondary.String() != "secondary" || TierTertiary.String() != "tertiary" {
		t.Errorf("unexpected tier names: %v %v %v", TierPrimary, TierSecondary, TierTertiary)
	}
	if TierPrimary >= TierSecondary || TierSecondary >= TierTertiary {
		t.Error("tier ordering must be primary < secondary < tertiary")
	}
}
