package domain

import "time"

// SessionRecord is one finished session as reported to the stats collaborator.
type SessionRecord struct {
	ID              string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
	Outcome         SessionOutcome
	Tag             string
	CreatedAt       time.Time
}

type DeepBreathEvent struct {
	ID         string
	Kind       DeepBreathEventKind
	OccurredAt time.Time
}

// Command is a start/stop request left by a widget or automation.
type Command struct {
	ID        string
	Action    CommandAction
	IssuedAt  time.Time
	CreatedAt time.Time
	// Source is free text such as "cli" or "http".
	Source string
}

// OutcomeSummary aggregates session records by outcome.
type OutcomeSummary struct {
	Outcome      SessionOutcome
	Count        int
	TotalSeconds int
}

// Device is this installation's identity. ID is the origin-id stamped on
// every replicated write.
type Device struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
