package model

import (
	"strings"
	"time"
)

type SuggestionType string

const (
	SuggestionPreSession  SuggestionType = "pre_session"
	SuggestionEndOfDay    SuggestionType = "end_of_day"
	SuggestionPattern     SuggestionType = "pattern"
	SuggestionPayment     SuggestionType = "payment"
	SuggestionScheduleGap SuggestionType = "schedule"
)

type SuggestionStatus string

const (
	SuggestionPending   SuggestionStatus = "pending"
	SuggestionActioned  SuggestionStatus = "actioned"
	SuggestionDismissed SuggestionStatus = "dismissed"
)

type DismissReason string

const (
	DismissManual            DismissReason = "manual"
	DismissActioned          DismissReason = "actioned"
	DismissConditionResolved DismissReason = "condition_resolved"
)

// Priority tiers. Lower tier means more urgent; the score is the inverse
// ordering used by the queue to pick the single visible item. Both come
// from this fixed table, never computed.
const InterruptTier = 1

type priorityEntry struct {
	Tier  int
	Score int
}

var priorityTable = map[SuggestionType]priorityEntry{
	SuggestionPreSession:  {Tier: 1, Score: 100},
	SuggestionEndOfDay:    {Tier: 2, Score: 80},
	SuggestionPayment:     {Tier: 3, Score: 60},
	SuggestionPattern:     {Tier: 4, Score: 40},
	SuggestionScheduleGap: {Tier: 5, Score: 20},
}

// PriorityFor returns the fixed tier and score for a suggestion type.
func PriorityFor(t SuggestionType) (tier, score int) {
	e := priorityTable[t]
	return e.Tier, e.Score
}

// RelatedEntity ties a suggestion to the fact that justifies it.
// ConditionKey is the handle used to batch-resolve suggestions when that
// fact changes outside the engine (a session confirmed, a payment marked).
type RelatedEntity struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	ConditionKey string `json:"conditionKey"`
}

// Suggestion is one operational alert produced by the engine. The ID is
// stable across runs (type + subject + discriminator) and doubles as the
// dedup key in the queue.
// swagger:model Suggestion
type Suggestion struct {
	ID            string           `json:"id"`
	Type          SuggestionType   `json:"type"`
	Priority      int              `json:"priority"`
	PriorityScore int              `json:"priorityScore"`
	Message       string           `json:"message"`
	Action        string           `json:"action"`
	Related       *RelatedEntity   `json:"related,omitempty"`
	Status        SuggestionStatus `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// DismissedSuggestion is the immutable history record a suggestion turns
// into when it reaches a terminal state. DismissedAt marshals as ISO-8601.
// swagger:model DismissedSuggestion
type DismissedSuggestion struct {
	ID          string         `json:"id"`
	Type        SuggestionType `json:"type"`
	Priority    int            `json:"priority"`
	Message     string         `json:"message"`
	DismissedAt time.Time      `json:"dismissedAt"`
	Reason      DismissReason  `json:"reason"`
	SubjectID   string         `json:"subjectId"`
}

// Action strings are colon-delimited commands interpreted by the client's
// action router: verb:param1:param2...

func BuildAction(verb string, params ...string) string {
	if len(params) == 0 {
		return verb
	}
	return verb + ":" + strings.Join(params, ":")
}

func ParseAction(action string) (verb string, params []string) {
	parts := strings.Split(action, ":")
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}
