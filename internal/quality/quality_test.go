package quality

import (
	"math"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/mimic/internal/style"
)

func intPtr(n int) *int { return &n }

func TestViolatesDenylist(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"This is truly inspiring", true},
		{"TRULY inspiring", true},
		{"What a Game Changer", true},
		{"Been there, so real.", false},
		{"Approaching this slowly", false},
		{"A new approach.", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := ViolatesDenylist(tt.text); got != tt.want {
			t.Errorf("ViolatesDenylist(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestViolations(t *testing.T) {
	got := Violations("A truly innovative synergy")
	if len(got) != 3 {
		t.Fatalf("expected 3 violations, got %v", got)
	}
}

func TestDenylistIsLowercaseAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Denylist() {
		if p != strings.ToLower(p) {
			t.Errorf("phrase %q not lower-cased", p)
		}
		if seen[p] {
			t.Errorf("duplicate phrase %q", p)
		}
		seen[p] = true
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"This is truly great.", "This is great."},
		{"Moreover this is truly great", "this is great"},
		{"Can Truly Transform lives", "lives"},
		{"Nothing to strip", "Nothing to strip"},
		{"Approaching this slowly", "Approaching this slowly"},
		{"Oftentimes the approach works", "Oftentimes the works"},
	}
	for _, tt := range tests {
		got := Clean(tt.in)
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if ViolatesDenylist(got) {
			t.Errorf("Clean(%q) still violates denylist: %q", tt.in, got)
		}
	}
}

func TestScore(t *testing.T) {
	post := "Consistency beats intensity when building a career."
	tests := []struct {
		name      string
		candidate string
		want      float64
	}{
		{"mid length with opener clamps to max", "So true, showing up daily matters.", 1.0},
		{"one denylisted phrase", "This is amazing work from you all.", 0.8},
		{"too long", strings.Repeat("word ", 26), 0.7},
		{"close paraphrase", "Consistency beats intensity when building a career.", 0.7},
		{"floor", "Truly amazing incredible fantastic outstanding remarkable", 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.candidate, post, nil, nil)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Score(%q) = %f, want %f", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestScore_TargetAndStyle(t *testing.T) {
	sig := &style.Signature{HasQuestion: true}
	plain := Score("Nice one, thanks for posting this.", "", intPtr(20), sig)
	if math.Abs(plain-1.0) > 0.001 {
		t.Errorf("expected 1.2-0.2 clamped to 1.0, got %f", plain)
	}
	long := Score(strings.Repeat("word ", 30), "", intPtr(3), sig)
	if math.Abs(long-0.5) > 0.001 {
		t.Errorf("expected 1.0-0.3-0.1-0.1 = 0.5, got %f", long)
	}
}

func TestLengthFits(t *testing.T) {
	ten := "one two three four five six seven eight nine ten"
	if !LengthFits(ten, nil) {
		t.Error("nil target must always fit")
	}
	if !LengthFits(ten, intPtr(15)) || !LengthFits(ten, intPtr(5)) {
		t.Error("expected ±5 words to fit")
	}
	if LengthFits(ten, intPtr(16)) || LengthFits(ten, intPtr(4)) {
		t.Error("expected outside ±5 not to fit")
	}
}

func TestConforms(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		sig       *style.Signature
		want      bool
	}{
		{"nil signature", "anything", nil, true},
		{"emoji required and present", "Love it 😊", &style.Signature{HasEmoji: true}, true},
		{"emoji required and missing", "Love it", &style.Signature{HasEmoji: true}, false},
		{"exclamation required", "Love it.", &style.Signature{HasExclamation: true}, false},
		{"question required", "Did it work?", &style.Signature{HasQuestion: true}, true},
		{"all markers", "Did it work?! 😂", &style.Signature{HasEmoji: true, HasExclamation: true, HasQuestion: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Conforms(tt.candidate, tt.sig); got != tt.want {
				t.Errorf("Conforms = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate(t *testing.T) {
	sig := &style.Signature{HasQuestion: true}
	if got := Gate("Did you try this yourself?", intPtr(5), sig); got != MaxPoints {
		t.Errorf("expected max points, got %d", got)
	}
	if got := Gate("Truly a great read", intPtr(30), sig); got != 0 {
		t.Errorf("expected 0 points, got %d", got)
	}
	if !Passes("Did it help?", nil, sig) {
		t.Error("expected candidate to pass")
	}
}
