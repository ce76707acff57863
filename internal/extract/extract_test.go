package extract

import (
	"strings"
	"testing"

	"github.com/mnemo-ai/mnemo/internal/model"
)

func findKind(cands []Candidate, kind model.Kind) *Candidate {
	for i := range cands {
		if cands[i].Kind == kind {
			return &cands[i]
		}
	}
	return nil
}

func TestExtractRules(t *testing.T) {
	tests := []struct {
		name       string
		utterance  string
		kind       model.Kind
		content    string // substring expected in candidate content
		importance int
		sentiment  float64
		tag        string
	}{
		{"name", "Hi, my name is Dana", model.KindPersonalFact, "Dana", 9, 0, "name"},
		{"location", "I live in Lisbon these days", model.KindPersonalFact, "Lisbon", 8, 0, "location"},
		{"profession", "I work as a nurse", model.KindPersonalFact, "nurse", 7, 0, "profession"},
		{"profession article", "I'm a software engineer", model.KindPersonalFact, "software engineer", 7, 0, "profession"},
		{"age", "I'm 25 years old", model.KindPersonalFact, "25 years old", 7, 0, "age"},
		{"education", "I study at MIT", model.KindPersonalFact, "MIT", 8, 0, "education"},
		{"favorite", "My favorite color is blue", model.KindPreference, "favorite color is blue", 7, 0.8, "color"},
		{"love", "I love hiking", model.KindPreference, "hiking", 7, 0.8, "likes"},
		{"like", "I really like jazz", model.KindPreference, "jazz", 6, 0.6, "likes"},
		{"hate", "I hate mornings", model.KindPreference, "mornings", 6, -0.8, "dislikes"},
		{"want", "I want to learn piano", model.KindGoal, "learn piano", 7, 0.3, "goal"},
		{"goal", "My goal is to run a marathon", model.KindGoal, "run a marathon", 8, 0.3, "goal"},
		{"worry", "I'm worried about my exams", model.KindConcern, "my exams", 8, -0.7, "worry"},
		{"fear", "I'm afraid of flying", model.KindConcern, "flying", 9, -0.8, "fear"},
		{"past", "I used to play in a band", model.KindSignificantEvent, "play in a band", 6, 0, "past"},
		{"childhood", "When I was a kid we moved a lot", model.KindSignificantEvent, "moved a lot", 7, 0, "childhood"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := Extract(tt.utterance, TurnContext{})
			c := findKind(cands, tt.kind)
			if c == nil {
				t.Fatalf("no %s candidate from %q (got %+v)", tt.kind, tt.utterance, cands)
			}
			if !strings.Contains(c.Content, tt.content) {
				t.Errorf("content %q does not contain %q", c.Content, tt.content)
			}
			if c.Importance != tt.importance {
				t.Errorf("importance = %d, want %d", c.Importance, tt.importance)
			}
			if c.Sentiment != tt.sentiment {
				t.Errorf("sentiment = %v, want %v", c.Sentiment, tt.sentiment)
			}
			found := false
			for _, tag := range c.Tags {
				if tag == tt.tag {
					found = true
				}
			}
			if !found {
				t.Errorf("tags %v missing %q", c.Tags, tt.tag)
			}
		})
	}
}

func TestExtractMultipleRules(t *testing.T) {
	cands := Extract("My favorite color is blue and I study at MIT", TurnContext{})

	pref := findKind(cands, model.KindPreference)
	if pref == nil {
		t.Fatal("expected a preference candidate")
	}
	if !strings.Contains(pref.Content, "blue") {
		t.Errorf("preference content %q should mention blue", pref.Content)
	}
	if strings.Contains(pref.Content, "MIT") {
		t.Errorf("preference content %q should stop before the next clause", pref.Content)
	}

	fact := findKind(cands, model.KindPersonalFact)
	if fact == nil {
		t.Fatal("expected a personal_fact candidate")
	}
	if !strings.Contains(fact.Content, "MIT") {
		t.Errorf("fact content %q should mention MIT", fact.Content)
	}
}

func TestExtractEmotionCandidate(t *testing.T) {
	cands := Extract("nothing factual here", TurnContext{Emotion: "sad"})
	c := findKind(cands, model.KindEmotionalPattern)
	if c == nil {
		t.Fatal("expected an emotional_pattern candidate")
	}
	if !strings.Contains(c.Content, "sad") {
		t.Errorf("content %q should mention the emotion", c.Content)
	}
	if c.Sentiment >= 0 {
		t.Errorf("sad should carry negative sentiment, got %v", c.Sentiment)
	}
	if c.Emotion != "sad" {
		t.Errorf("emotion = %q, want sad", c.Emotion)
	}
}

func TestExtractNeutralEmotionSuppressed(t *testing.T) {
	for _, emotion := range []string{"", "neutral", "Neutral"} {
		cands := Extract("nothing factual here", TurnContext{Emotion: emotion})
		if c := findKind(cands, model.KindEmotionalPattern); c != nil {
			t.Errorf("emotion %q should not emit a candidate, got %+v", emotion, c)
		}
	}
}

func TestExtractEmotionStampedOnRuleCandidates(t *testing.T) {
	cands := Extract("I love hiking", TurnContext{Emotion: "happy"})
	c := findKind(cands, model.KindPreference)
	if c == nil {
		t.Fatal("expected a preference candidate")
	}
	if c.Emotion != "happy" {
		t.Errorf("emotion = %q, want happy", c.Emotion)
	}
}

func TestExtractNonTextInput(t *testing.T) {
	if cands := Extract("\xff\xfe not valid utf8", TurnContext{Emotion: "sad"}); cands != nil {
		t.Errorf("invalid utf8 should yield nil, got %+v", cands)
	}
	if cands := Extract("   ", TurnContext{}); cands != nil {
		t.Errorf("blank input should yield nil, got %+v", cands)
	}
}

func TestExtractNoMatch(t *testing.T) {
	if cands := Extract("the weather is nice today", TurnContext{}); cands != nil {
		t.Errorf("expected no candidates, got %+v", cands)
	}
}

func TestExtractPastTimeframe(t *testing.T) {
	cands := Extract("I used to play in a band", TurnContext{})
	c := findKind(cands, model.KindSignificantEvent)
	if c == nil {
		t.Fatal("expected a significant_event candidate")
	}
	if c.Timeframe != model.TimeframePast {
		t.Errorf("timeframe = %q, want past", c.Timeframe)
	}
	if c.Recency != model.RecencyYearsAgo {
		t.Errorf("recency = %q, want years_ago", c.Recency)
	}
}
