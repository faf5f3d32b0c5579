package domain

type SessionOutcome string

const (
	OutcomeCompleted SessionOutcome = "completed"
	OutcomeStopped   SessionOutcome = "stopped"
)

type DeepBreathEventKind string

const (
	DeepBreathStarted   DeepBreathEventKind = "started"
	DeepBreathConfirmed DeepBreathEventKind = "confirmed"
	DeepBreathTimedOut  DeepBreathEventKind = "timed_out"
)

type BlockKind string

const (
	BlockFocus BlockKind = "focus"
	BlockBreak BlockKind = "break"
)

// ValidBlockKinds is the canonical set of accepted block kind strings.
var ValidBlockKinds = map[string]bool{
	"focus": true, "break": true,
}

type CommandAction string

const (
	CommandStart CommandAction = "start"
	CommandStop  CommandAction = "stop"
)

// ValidCommandActions is the canonical set of accepted widget command actions.
var ValidCommandActions = map[string]bool{
	"start": true, "stop": true,
}
