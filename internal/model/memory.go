// Package model defines the core memory data types.
package model

import "time"

// Kind classifies what a memory is about.
type Kind string

// The closed set of memory kinds.
const (
	KindPersonalFact       Kind = "personal_fact"
	KindPreference         Kind = "preference"
	KindEmotionalPattern   Kind = "emotional_pattern"
	KindSignificantEvent   Kind = "significant_event"
	KindRelationship       Kind = "relationship"
	KindGoal               Kind = "goal"
	KindConcern            Kind = "concern"
	KindAchievement        Kind = "achievement"
	KindRoutine            Kind = "routine"
	KindValue              Kind = "value"
	KindTrigger            Kind = "trigger"
	KindCopingMechanism    Kind = "coping_mechanism"
	KindCommunicationStyle Kind = "communication_style"
	KindSynthetic          Kind = "synthetic"
)

// ValidKinds are the allowed memory kinds.
var ValidKinds = map[Kind]bool{
	KindPersonalFact:       true,
	KindPreference:         true,
	KindEmotionalPattern:   true,
	KindSignificantEvent:   true,
	KindRelationship:       true,
	KindGoal:               true,
	KindConcern:            true,
	KindAchievement:        true,
	KindRoutine:            true,
	KindValue:              true,
	KindTrigger:            true,
	KindCopingMechanism:    true,
	KindCommunicationStyle: true,
	KindSynthetic:          true,
}

// Timeframe, recency and frequency values describing when and how often
// the remembered fact applies.
const (
	TimeframePast    = "past"
	TimeframePresent = "present"
	TimeframeFuture  = "future"

	RecencyRecent    = "recent"
	RecencyMonthsAgo = "months_ago"
	RecencyYearsAgo  = "years_ago"

	FrequencyOneTime    = "one_time"
	FrequencyOccasional = "occasional"
	FrequencyRegular    = "regular"
	FrequencyConstant   = "constant"
)

// Emotional holds the importance/sentiment scoring captured with a memory.
type Emotional struct {
	Importance          int     `json:"importance"` // 1..10
	Sentiment           float64 `json:"sentiment"`  // -1..1
	EmotionWhenCaptured string  `json:"emotion_when_captured,omitempty"`
}

// Temporal holds when the remembered fact applies.
type Temporal struct {
	Timeframe string `json:"timeframe"`
	Recency   string `json:"recency"`
	Frequency string `json:"frequency"`
}

// Usage tracks how often a memory has been surfaced and how useful it was.
type Usage struct {
	AccessCount    int       `json:"access_count"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Effectiveness  float64   `json:"effectiveness"` // 0..1, starts at 0.5
}

// DefaultEffectiveness is the starting usefulness score for new memories.
const DefaultEffectiveness = 0.5

// Memory represents a stored memory entry, scoped to a single owner.
type Memory struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	Emotional Emotional `json:"emotional"`
	Temporal  Temporal  `json:"temporal"`
	Usage     Usage     `json:"usage"`
	Tags      []string  `json:"tags,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Revision is an archived snapshot of a memory's content before a
// merge-correction overwrote it.
type Revision struct {
	ID         string    `json:"id"`
	MemoryID   string    `json:"memory_id"`
	Content    string    `json:"content"`
	Importance int       `json:"importance"`
	ReplacedAt time.Time `json:"replaced_at"`
}

// Validate checks range invariants on externally supplied memories.
// Internal score math clamps; manual input is rejected instead.
func (m *Memory) Validate() error {
	if m.OwnerID == "" {
		return &ValidationError{Field: "owner_id", Reason: "must not be empty"}
	}
	if !ValidKinds[m.Kind] {
		return &ValidationError{Field: "kind", Reason: "unknown kind " + string(m.Kind)}
	}
	if m.Content == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if m.Emotional.Importance < 1 || m.Emotional.Importance > 10 {
		return &ValidationError{Field: "importance", Reason: "must be in [1,10]"}
	}
	if m.Emotional.Sentiment < -1 || m.Emotional.Sentiment > 1 {
		return &ValidationError{Field: "sentiment", Reason: "must be in [-1,1]"}
	}
	if m.Usage.Effectiveness < 0 || m.Usage.Effectiveness > 1 {
		return &ValidationError{Field: "effectiveness", Reason: "must be in [0,1]"}
	}
	return nil
}

// HasTag reports whether the memory carries the given tag.
func (m *Memory) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
