package suggest

import "testing"

func TestExploitationRatio_Boundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		distinctTypes int
		want          float64
	}{
		{0, 0.6},
		{1, 0.6},
		{19, 0.6},
		{20, 0.5},
		{21, 0.5},
		{100, 0.5},
	}

	for _, tt := range tests {
		if got := exploitationRatio(tt.distinctTypes); got != tt.want {
			t.Errorf("exploitationRatio(%d) = %v, want %v", tt.distinctTypes, got, tt.want)
		}
	}
}

func TestSplitSlots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		max         int
		ratio       float64
		wantExploit int
		wantExplore int
	}{
		{6, 0.6, 4, 2},  // ceil(3.6) = 4
		{6, 0.5, 3, 3},
		{5, 0.6, 3, 2},
		{1, 0.6, 1, 0},
		{0, 0.6, 0, 0},
		{4, 1.0, 4, 0},
	}

	for _, tt := range tests {
		exploit, explore := splitSlots(tt.max, tt.ratio)
		if exploit != tt.wantExploit || explore != tt.wantExplore {
			t.Errorf("splitSlots(%d, %v) = (%d, %d), want (%d, %d)",
				tt.max, tt.ratio, exploit, explore, tt.wantExploit, tt.wantExplore)
		}
	}
}
