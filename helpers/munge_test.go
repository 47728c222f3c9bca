package helpers

import (
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My Study", "my-study"},
		{"Health  Care!!", "health-care"},
		{"already-slugged", "already-slugged"},
		{"UPPER_case words", "upper-case-words"},
	}

	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSlug_Idempotent(t *testing.T) {
	once := Slug("A Longish Tag Name")
	if twice := Slug(once); twice != once {
		t.Errorf("Slug(Slug(x)) = %q, want %q", twice, once)
	}
}

func TestSlugMax(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := SlugMax(long, MaxTagLength)
	if len(got) != MaxTagLength {
		t.Errorf("len = %d, want %d", len(got), MaxTagLength)
	}

	// Short inputs pass through unchanged apart from slugging.
	if got := SlugMax("Short Tag", MaxTagLength); got != "short-tag" {
		t.Errorf("SlugMax = %q, want 'short-tag'", got)
	}
}

func TestSlugMax_TrimsDanglingDash(t *testing.T) {
	// 99 chars + separator lands the cut right on a dash.
	input := strings.Repeat("a", 99) + " bbb"
	got := SlugMax(input, MaxTagLength)
	if strings.HasSuffix(got, "-") {
		t.Errorf("SlugMax = %q, should not end with a dash", got)
	}
}
