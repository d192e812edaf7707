package core

import (
	"math"
	"testing"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   Interaction
		want float64
	}{
		{name: "view", in: Interaction{Event: EventView}, want: 1},
		{name: "enroll", in: Interaction{Event: EventEnroll}, want: 3},
		{name: "complete", in: Interaction{Event: EventComplete}, want: 5},
		{name: "like", in: Interaction{Event: EventLike}, want: 4},
		{name: "dislike suppresses", in: Interaction{Event: EventDislike}, want: 0},
		{name: "rate scales with rating", in: Interaction{Event: EventRate, Rating: 5}, want: 4},
		{name: "low rating scales down", in: Interaction{Event: EventRate, Rating: 2.5}, want: 2},
		{name: "rate without rating uses base", in: Interaction{Event: EventRate}, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Confidence(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositive(t *testing.T) {
	threshold := 3.5
	tests := []struct {
		name string
		in   Interaction
		want bool
	}{
		{name: "enroll", in: Interaction{Event: EventEnroll}, want: true},
		{name: "complete", in: Interaction{Event: EventComplete}, want: true},
		{name: "like", in: Interaction{Event: EventLike}, want: true},
		{name: "view is not positive", in: Interaction{Event: EventView}, want: false},
		{name: "dislike is not positive", in: Interaction{Event: EventDislike}, want: false},
		{name: "high rating", in: Interaction{Event: EventRate, Rating: 4}, want: true},
		{name: "low rating", in: Interaction{Event: EventRate, Rating: 2}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Positive(threshold); got != tt.want {
				t.Errorf("Positive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetProfileFromParams(t *testing.T) {
	rctx := &RecommendContext{
		Params: map[string]any{
			"interests":        []string{"Python", "  python ", "sql"},
			"domain":           "data science",
			"experience_level": "beginner",
		},
	}
	p := rctx.GetProfile()
	if p == nil {
		t.Fatal("profile should build from params")
	}
	if p.Domain != "data science" || p.ExperienceLevel != "beginner" {
		t.Errorf("profile = %+v", p)
	}
	// normalization lowercases, trims and dedups while keeping order
	norm := p.NormalizedInterests()
	if len(norm) != 2 || norm[0] != "python" || norm[1] != "sql" {
		t.Errorf("normalized = %v", norm)
	}
}

func TestGetProfilePrefersTyped(t *testing.T) {
	typed := &InterestProfile{Domain: "programming"}
	rctx := &RecommendContext{
		Profile: typed,
		Params:  map[string]any{"domain": "other"},
	}
	if got := rctx.GetProfile(); got != typed {
		t.Error("typed profile must win over params")
	}
}

func TestAddExplanationDedup(t *testing.T) {
	it := NewItem("c1")
	it.AddExplanation("popular among learners")
	it.AddExplanation("similar to Python Basics")
	it.AddExplanation("popular among learners")
	it.AddExplanation("")

	want := []string{"popular among learners", "similar to Python Basics"}
	if len(it.Explanations) != len(want) {
		t.Fatalf("explanations = %v", it.Explanations)
	}
	for i := range want {
		if it.Explanations[i] != want[i] {
			t.Errorf("explanations[%d] = %q, want %q", i, it.Explanations[i], want[i])
		}
	}
}
