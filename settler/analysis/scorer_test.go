package analysis

import "testing"

func Test_ActivityScore(t *testing.T) {
	tests := []struct {
		name            string
		categoryMinutes map[string]int
		want            int64
	}{
		{
			name:            "empty breakdown scores zero",
			categoryMinutes: map[string]int{},
			want:            0,
		},
		{
			name:            "study plus social media",
			categoryMinutes: map[string]int{"Study": 120, "SocialMedia": 10},
			want:            120,
		},
		{
			name:            "score ignores minute magnitude",
			categoryMinutes: map[string]int{"Study": 1},
			want:            100,
		},
		{
			name:            "large minutes score the same",
			categoryMinutes: map[string]int{"Study": 1000},
			want:            100,
		},
		{
			name:            "zero-minute categories do not count",
			categoryMinutes: map[string]int{"Study": 0, "Entertainment": 45},
			want:            5,
		},
		{
			name:            "unknown labels score zero",
			categoryMinutes: map[string]int{"Gaming": 300, "Production": 20},
			want:            50,
		},
		{
			name:            "Other is present but worth nothing",
			categoryMinutes: map[string]int{"Other": 90},
			want:            0,
		},
		{
			name: "all categories",
			categoryMinutes: map[string]int{
				"Study": 10, "InfoGathering": 10, "Production": 10,
				"SocialMedia": 10, "Entertainment": 10, "Other": 10,
			},
			want: 205,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActivityScore(tt.categoryMinutes); got != tt.want {
				t.Errorf("ActivityScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func Test_ParseCategory(t *testing.T) {
	if got := ParseCategory("Study"); got != CategoryStudy {
		t.Errorf("ParseCategory(Study) = %v", got)
	}
	if got := ParseCategory("study"); got != CategoryUnknown {
		t.Errorf("ParseCategory is case sensitive, got %v", got)
	}
	if got := ParseCategory("Doomscrolling"); got != CategoryUnknown {
		t.Errorf("ParseCategory(out-of-vocabulary) = %v", got)
	}
	if CategoryUnknown.Points() != 0 {
		t.Error("unknown category must score zero")
	}
}
