package analysis

import (
	"reflect"
	"testing"
)

func Test_DisplayName(t *testing.T) {
	tests := []struct {
		pkg  string
		want string
	}{
		{"com.google.android.youtube", "YouTube"},
		{"com.google.android.youtube.tv", "YouTube"},
		{"com.kakao.talk", "KakaoTalk"},
		{"com.example.somegame", "Somegame"},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			if got := DisplayName(tt.pkg); got != tt.want {
				t.Errorf("DisplayName(%s) = %q, want %q", tt.pkg, got, tt.want)
			}
		})
	}
}

func Test_PromptLines(t *testing.T) {
	minutes := map[string]int{
		"com.google.android.youtube": 120,
		"com.kakao.talk":             10,
		"com.aaa.app":                10,
	}

	got := PromptLines(minutes)
	want := []string{
		"- YouTube (com.google.android.youtube): 120 minutes",
		"- App (com.aaa.app): 10 minutes",
		"- KakaoTalk (com.kakao.talk): 10 minutes",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PromptLines() = %v, want %v", got, want)
	}
}
