package schedule

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"gopkg.in/yaml.v3"
)

// File is the parsed schedule configuration file.
//
//	active: workdays
//	profiles:
//	  - name: social
//	    rules: [news.example, video.example]
//	schedules:
//	  - name: workdays
//	    enabled: true
//	    blocks:
//	      - id: morning
//	        kind: focus
//	        start: "09:00"
//	        minutes: 50
//	        weekdays: [mon, tue, wed, thu, fri]
//	        profile: social
//	        label: Morning focus
type File struct {
	Active    string
	Schedules []domain.Schedule
	Profiles  map[string]*domain.BlockingProfile
}

type fileDoc struct {
	Active    string                   `yaml:"active"`
	Profiles  []domain.BlockingProfile `yaml:"profiles"`
	Schedules []scheduleDoc            `yaml:"schedules"`
}

type scheduleDoc struct {
	Name    string     `yaml:"name"`
	Enabled *bool      `yaml:"enabled"`
	Blocks  []blockDoc `yaml:"blocks"`
}

type blockDoc struct {
	ID       string   `yaml:"id"`
	Kind     string   `yaml:"kind"`
	Start    string   `yaml:"start"`
	Minutes  int      `yaml:"minutes"`
	Weekdays []string `yaml:"weekdays"`
	Profile  string   `yaml:"profile"`
	Label    string   `yaml:"label"`
}

// LoadFile reads and validates a schedule file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes and validates schedule YAML. Unknown fields are rejected.
func ParseFile(data []byte) (*File, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing schedule yaml: %w", err)
	}

	f := &File{Active: doc.Active, Profiles: make(map[string]*domain.BlockingProfile)}
	for i := range doc.Profiles {
		p := doc.Profiles[i]
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d: name is required", i)
		}
		if _, dup := f.Profiles[p.Name]; dup {
			return nil, fmt.Errorf("profile %s: defined twice", p.Name)
		}
		f.Profiles[p.Name] = &p
	}

	names := make(map[string]bool)
	for _, sd := range doc.Schedules {
		if sd.Name == "" {
			return nil, errors.New("schedule name is required")
		}
		if names[sd.Name] {
			return nil, fmt.Errorf("schedule %s: defined twice", sd.Name)
		}
		names[sd.Name] = true

		s := domain.Schedule{Name: sd.Name, Enabled: sd.Enabled == nil || *sd.Enabled}
		ids := make(map[string]bool)
		for _, bd := range sd.Blocks {
			b, err := bd.toBlock()
			if err != nil {
				return nil, fmt.Errorf("schedule %s: %w", sd.Name, err)
			}
			if ids[b.ID] {
				return nil, fmt.Errorf("schedule %s: block %s defined twice", sd.Name, b.ID)
			}
			ids[b.ID] = true
			if b.Profile != "" {
				if _, ok := f.Profiles[b.Profile]; !ok {
					return nil, fmt.Errorf("schedule %s: block %s: unknown profile %q", sd.Name, b.ID, b.Profile)
				}
			}
			s.Blocks = append(s.Blocks, b)
		}
		f.Schedules = append(f.Schedules, s)
	}

	if f.Active != "" && !names[f.Active] {
		return nil, fmt.Errorf("active schedule %q is not defined", f.Active)
	}
	return f, nil
}

// ActiveSchedule returns the schedule named by Active.
func (f *File) ActiveSchedule() (domain.Schedule, bool) {
	if f == nil || f.Active == "" {
		return domain.Schedule{}, false
	}
	for _, s := range f.Schedules {
		if s.Name == f.Active {
			return s, true
		}
	}
	return domain.Schedule{}, false
}

func (f *File) Profile(name string) (*domain.BlockingProfile, bool) {
	if f == nil {
		return nil, false
	}
	p, ok := f.Profiles[name]
	return p, ok
}

func (bd blockDoc) toBlock() (domain.ScheduleBlock, error) {
	start, err := ParseClock(bd.Start)
	if err != nil {
		return domain.ScheduleBlock{}, fmt.Errorf("block %s: %w", bd.ID, err)
	}
	days, err := parseWeekdays(bd.Weekdays)
	if err != nil {
		return domain.ScheduleBlock{}, fmt.Errorf("block %s: %w", bd.ID, err)
	}
	kind := bd.Kind
	if kind == "" {
		kind = string(domain.BlockFocus)
	}
	b := domain.ScheduleBlock{
		ID:              bd.ID,
		Kind:            domain.BlockKind(strings.ToLower(kind)),
		StartMinute:     start,
		DurationMinutes: bd.Minutes,
		Weekdays:        days,
		Profile:         bd.Profile,
		Label:           bd.Label,
	}
	if err := b.Validate(); err != nil {
		return domain.ScheduleBlock{}, err
	}
	return b, nil
}

// ParseClock converts "HH:MM" to a minute of day.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid start %q, want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts a minute of day to "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days, nil
}
