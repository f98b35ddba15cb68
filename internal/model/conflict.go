package model

type ConflictSeverity string

const (
	SeverityWarning ConflictSeverity = "warning"
	SeverityError   ConflictSeverity = "error"
)

type ConflictKind string

const (
	ConflictOverlap ConflictKind = "overlap"
	ConflictClose   ConflictKind = "close"
)

// Conflict is one candidate-vs-session collision. GapMinutes is negative
// for overlaps (the overlap magnitude), zero when the intervals touch and
// positive when the sessions are merely close.
// swagger:model Conflict
type Conflict struct {
	StudentID   uint         `json:"studentId"`
	StudentName string       `json:"studentName"`
	SessionID   uint         `json:"sessionId"`
	Kind        ConflictKind `json:"kind"`
	GapMinutes  int          `json:"gapMinutes"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
}

// ConflictResult aggregates all conflicts for one candidate. Severity is
// the maximum severity across Conflicts; the list keeps errors before
// warnings, each group sorted by ascending gap.
// swagger:model ConflictResult
type ConflictResult struct {
	Severity  ConflictSeverity `json:"severity"`
	Conflicts []Conflict       `json:"conflicts"`
}

// SlotSuggestion is one conflict-free start time with its presentation
// bucket.
// swagger:model SlotSuggestion
type SlotSuggestion struct {
	Time    string  `json:"time"` // "HH:MM"
	DayPart DayPart `json:"dayPart"`
}

type DayPart string

const (
	DayPartMorning   DayPart = "morning"
	DayPartAfternoon DayPart = "afternoon"
	DayPartEvening   DayPart = "evening"
)
