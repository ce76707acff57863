// Package extract turns a single utterance into typed insight candidates
// using an ordered table of lexical pattern rules.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mnemo-ai/mnemo/internal/model"
)

// TurnContext carries per-turn signals that inform extraction.
type TurnContext struct {
	Emotion string // detected emotion for this turn, "" or "neutral" if none
}

// Candidate is an unpersisted fact proposal. Same shape as a memory's
// content/score fields but no identity yet.
type Candidate struct {
	Kind       model.Kind
	Content    string
	Importance int
	Sentiment  float64
	Emotion    string
	Timeframe  string
	Recency    string
	Frequency  string
	Tags       []string
}

// rule pairs a matcher with the kind and default scores it produces.
// Rules are evaluated in order and every match emits a candidate; dedup
// against existing memories is the resolver's job.
type rule struct {
	pattern    *regexp.Regexp
	kind       model.Kind
	importance int
	sentiment  float64
	timeframe  string
	tags       []string
	groupTags  []int // capture-group indexes appended as tags
	render     func(groups []string) string
}

var rules = []rule{
	{
		pattern:    regexp.MustCompile(`(?i)\bmy name is ([A-Za-z][\w'-]*)`),
		kind:       model.KindPersonalFact,
		importance: 9,
		tags:       []string{"name"},
		render:     func(g []string) string { return "User's name is " + g[1] },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi live in ([^,.!?]+)`),
		kind:       model.KindPersonalFact,
		importance: 8,
		tags:       []string{"location"},
		render:     func(g []string) string { return "User lives in " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\b(?:i work as (?:an? )?|i(?:'m| am) an? )([^,.!?]+)`),
		kind:       model.KindPersonalFact,
		importance: 7,
		tags:       []string{"profession"},
		render:     func(g []string) string { return "User works as " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi(?:'m| am) (\d{1,3})(?: years old)?\b`),
		kind:       model.KindPersonalFact,
		importance: 7,
		tags:       []string{"age"},
		render:     func(g []string) string { return "User is " + g[1] + " years old" },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi study at ([^,.!?]+)`),
		kind:       model.KindPersonalFact,
		importance: 8,
		tags:       []string{"education"},
		render:     func(g []string) string { return "User studies at " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bmy favou?rite ([a-z][a-z ]*?) is ([^,.!?]+)`),
		kind:       model.KindPreference,
		importance: 7,
		sentiment:  0.8,
		groupTags:  []int{1}, // topic tag, e.g. "color", so merging stays per topic
		render: func(g []string) string {
			return fmt.Sprintf("User's favorite %s is %s", strings.TrimSpace(g[1]), trimClause(g[2]))
		},
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi love ([^,.!?]+)`),
		kind:       model.KindPreference,
		importance: 7,
		sentiment:  0.8,
		tags:       []string{"likes"},
		render:     func(g []string) string { return "User loves " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi really (?:like|enjoy) ([^,.!?]+)`),
		kind:       model.KindPreference,
		importance: 6,
		sentiment:  0.6,
		tags:       []string{"likes"},
		render:     func(g []string) string { return "User likes " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi (?:hate|can't stand) ([^,.!?]+)`),
		kind:       model.KindPreference,
		importance: 6,
		sentiment:  -0.8,
		tags:       []string{"dislikes"},
		render:     func(g []string) string { return "User dislikes " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi want to ([^,.!?]+)`),
		kind:       model.KindGoal,
		importance: 7,
		sentiment:  0.3,
		timeframe:  model.TimeframeFuture,
		tags:       []string{"goal", "aspiration"},
		render:     func(g []string) string { return "User wants to " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bmy goal is (?:to )?([^,.!?]+)`),
		kind:       model.KindGoal,
		importance: 8,
		sentiment:  0.3,
		timeframe:  model.TimeframeFuture,
		tags:       []string{"goal"},
		render:     func(g []string) string { return "User's goal is to " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi(?:'m| am) (?:worried|anxious|nervous) about ([^,.!?]+)`),
		kind:       model.KindConcern,
		importance: 8,
		sentiment:  -0.7,
		tags:       []string{"worry", "concern"},
		render:     func(g []string) string { return "User is worried about " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi(?:'m| am) (?:stressed|scared|afraid) (?:about|of) ([^,.!?]+)`),
		kind:       model.KindConcern,
		importance: 9,
		sentiment:  -0.8,
		tags:       []string{"fear", "concern"},
		render:     func(g []string) string { return "User is afraid of " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bi used to ([^,.!?]+)`),
		kind:       model.KindSignificantEvent,
		importance: 6,
		timeframe:  model.TimeframePast,
		tags:       []string{"past"},
		render:     func(g []string) string { return "User used to " + trimClause(g[1]) },
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bwhen i was (?:younger|a kid|a child)\b`),
		kind:       model.KindSignificantEvent,
		importance: 7,
		timeframe:  model.TimeframePast,
		tags:       []string{"past", "childhood"},
		render:     func(g []string) string { return "" }, // content falls back to the utterance
	},
}

// trailing clauses like "and I study at MIT" belong to other rules
var clauseCut = regexp.MustCompile(`(?i)\s+(?:and|but|because|so)\s+i\b.*$`)

func trimClause(s string) string {
	return strings.TrimSpace(clauseCut.ReplaceAllString(s, ""))
}

// Extract applies the rule table to one utterance. Pure: no side
// effects, no store access. Malformed (non-UTF-8) or blank input yields
// no candidates and no error; the turn simply proceeds without new
// memories.
func Extract(utterance string, tc TurnContext) []Candidate {
	if !utf8.ValidString(utterance) {
		return nil
	}
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil
	}

	var out []Candidate
	for _, r := range rules {
		groups := r.pattern.FindStringSubmatch(utterance)
		if groups == nil {
			continue
		}
		content := r.render(groups)
		if content == "" {
			content = utterance
		}
		c := Candidate{
			Kind:       r.kind,
			Content:    content,
			Importance: r.importance,
			Sentiment:  r.sentiment,
			Emotion:    emotionOrEmpty(tc),
			Timeframe:  r.timeframe,
			Recency:    model.RecencyRecent,
			Frequency:  model.FrequencyOneTime,
			Tags:       append([]string(nil), r.tags...),
		}
		for _, gi := range r.groupTags {
			if tag := strings.ToLower(strings.TrimSpace(groups[gi])); tag != "" {
				c.Tags = append(c.Tags, tag)
			}
		}
		if c.Timeframe == "" {
			c.Timeframe = model.TimeframePresent
		}
		if c.Timeframe == model.TimeframePast {
			c.Recency = model.RecencyYearsAgo
		}
		out = append(out, c)
	}

	// A non-neutral turn emotion is itself worth remembering, even when
	// no lexical rule fired.
	if e := emotionOrEmpty(tc); e != "" {
		out = append(out, Candidate{
			Kind:       model.KindEmotionalPattern,
			Content:    "User expressed " + e,
			Importance: 5,
			Sentiment:  emotionSentiment(e),
			Emotion:    e,
			Timeframe:  model.TimeframePresent,
			Recency:    model.RecencyRecent,
			Frequency:  model.FrequencyOccasional,
			Tags:       []string{"emotion", e},
		})
	}

	return out
}

func emotionOrEmpty(tc TurnContext) string {
	e := strings.ToLower(strings.TrimSpace(tc.Emotion))
	if e == "" || e == "neutral" {
		return ""
	}
	return e
}

func emotionSentiment(emotion string) float64 {
	switch emotion {
	case "happy", "excited", "grateful", "proud", "hopeful":
		return 0.6
	case "sad", "angry", "anxious", "frustrated", "lonely", "scared":
		return -0.6
	}
	return 0
}
