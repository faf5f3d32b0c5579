package domain

import (
	"errors"
	"fmt"
	"time"
)

const MinutesPerDay = 24 * 60

var (
	ErrInvalidBlock = errors.New("invalid schedule block")
)

// BlockingProfile is an opaque descriptor handed to the blocking collaborator.
// An empty profile blocks nothing.
type BlockingProfile struct {
	Name  string   `yaml:"name" json:"name"`
	Rules []string `yaml:"rules" json:"rules"`
}

// EmptyProfile is the override used for break blocks.
func EmptyProfile() *BlockingProfile {
	return &BlockingProfile{}
}

type ScheduleBlock struct {
	ID              string
	Kind            BlockKind
	StartMinute     int
	DurationMinutes int
	Weekdays        []time.Weekday
	// Profile names the blocking profile applied during focus blocks.
	Profile string
	// Label becomes the tag of sessions the block starts.
	Label string
}

// EndMinute is the first minute of day after the block.
func (b ScheduleBlock) EndMinute() int {
	return b.StartMinute + b.DurationMinutes
}

// Validate checks the block's interval lies within a single day.
func (b ScheduleBlock) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidBlock)
	}
	if !ValidBlockKinds[string(b.Kind)] {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidBlock, b.ID, b.Kind)
	}
	if b.StartMinute < 0 || b.StartMinute >= MinutesPerDay {
		return fmt.Errorf("%w: %s: start minute %d out of range", ErrInvalidBlock, b.ID, b.StartMinute)
	}
	if b.EndMinute() <= b.StartMinute {
		return fmt.Errorf("%w: %s: end must be after start", ErrInvalidBlock, b.ID)
	}
	if b.EndMinute() > MinutesPerDay {
		return fmt.Errorf("%w: %s: block crosses midnight", ErrInvalidBlock, b.ID)
	}
	return nil
}

// AppliesOn reports whether the block runs on the given weekday.
// An empty weekday set means every day.
func (b ScheduleBlock) AppliesOn(day time.Weekday) bool {
	if len(b.Weekdays) == 0 {
		return true
	}
	for _, d := range b.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Contains reports whether minute falls in [start, end).
func (b ScheduleBlock) Contains(minute int) bool {
	return minute >= b.StartMinute && minute < b.EndMinute()
}

type Schedule struct {
	Name    string
	Enabled bool
	Blocks  []ScheduleBlock
}

// ActiveBlock returns the first block covering the given local time.
// Overlapping blocks are not rejected; list order decides.
func (s Schedule) ActiveBlock(local time.Time) (ScheduleBlock, bool) {
	minute := local.Hour()*60 + local.Minute()
	for _, b := range s.Blocks {
		if b.AppliesOn(local.Weekday()) && b.Contains(minute) {
			return b, true
		}
	}
	return ScheduleBlock{}, false
}
