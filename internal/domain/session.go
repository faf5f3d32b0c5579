package domain

import "time"

// Replication keys shared by every device of one user.
const (
	KeySessionState       = "session.state"
	KeySessionPreferences = "session.preferences"
)

// DefaultMinutes is the session length used when no preferences have been
// replicated yet.
const DefaultMinutes = 25

// SharedSessionState is the replicated view of the current session.
// IsRunning holds exactly when StartedAt is set.
type SharedSessionState struct {
	Duration  int        `cbor:"duration"`
	StartedAt *time.Time `cbor:"started_at,omitempty"`
	IsRunning bool       `cbor:"is_running"`
	UpdatedAt time.Time  `cbor:"updated_at"`
	OriginID  string     `cbor:"origin_id"`
}

// DefaultSessionState returns the idle snapshot used when nothing readable
// has been replicated.
func DefaultSessionState() SharedSessionState {
	return SharedSessionState{Duration: DefaultMinutes * 60}
}

// Valid reports whether the running flag and start time agree.
func (s SharedSessionState) Valid() bool {
	return s.IsRunning == (s.StartedAt != nil)
}

// DurationOrMin returns the snapshot duration clamped to at least one second.
func (s SharedSessionState) DurationOrMin() time.Duration {
	if s.Duration <= 0 {
		return time.Second
	}
	return time.Duration(s.Duration) * time.Second
}

// SharedPreferences is the replicated user preference record.
type SharedPreferences struct {
	Minutes           int       `cbor:"minutes"`
	DeepBreathEnabled bool      `cbor:"deep_breath_enabled"`
	UpdatedAt         time.Time `cbor:"updated_at"`
	OriginID          string    `cbor:"origin_id"`
}

// DefaultPreferences returns the preferences used before any are replicated.
func DefaultPreferences() SharedPreferences {
	return SharedPreferences{Minutes: DefaultMinutes}
}

// ClampMinutes returns n, or 1 when n is not positive.
func ClampMinutes(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

type OriginKind string

const (
	OriginManual   OriginKind = "manual"
	OriginSchedule OriginKind = "schedule"
)

// SessionOrigin records what started the current session.
type SessionOrigin struct {
	Kind    OriginKind `json:"kind"`
	BlockID string     `json:"block_id,omitempty"`
}

// ManualOrigin is the origin of user-started and externally-started sessions.
func ManualOrigin() SessionOrigin {
	return SessionOrigin{Kind: OriginManual}
}

// ScheduleOrigin is the origin of a session started for a schedule block.
func ScheduleOrigin(blockID string) SessionOrigin {
	return SessionOrigin{Kind: OriginSchedule, BlockID: blockID}
}

func (o SessionOrigin) IsSchedule() bool {
	return o.Kind == OriginSchedule
}

type DeepBreathPhase string

const (
	DeepBreathNone           DeepBreathPhase = "none"
	DeepBreathCounting       DeepBreathPhase = "counting"
	DeepBreathReadyToConfirm DeepBreathPhase = "ready_to_confirm"
)

// LocalSessionView is the in-memory state derived from the shared snapshots
// plus local sub-state. It is never persisted.
type LocalSessionView struct {
	Minutes             int             `json:"minutes"`
	IsRunning           bool            `json:"is_running"`
	Remaining           time.Duration   `json:"remaining"`
	DeepBreath          DeepBreathPhase `json:"deep_breath"`
	DeepBreathRemaining time.Duration   `json:"deep_breath_remaining"`
	DeepBreathEnabled   bool            `json:"deep_breath_enabled"`
	Origin              SessionOrigin   `json:"origin"`
	Tag                 string          `json:"tag,omitempty"`
	ActiveDuration      time.Duration   `json:"active_duration"`
	CurrentSessionStart *time.Time      `json:"current_session_start,omitempty"`
}

// RemainingSeconds rounds the remaining time up to whole seconds.
func (v LocalSessionView) RemainingSeconds() int {
	return int((v.Remaining + time.Second - 1) / time.Second)
}
