// Package hooks adapts the session engine's blocking and notification ports to
// the host: blocking runs user-configured shell commands, notifications go to
// the log.
package hooks

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
)

const (
	DefaultHookTimeout = 10 * time.Second
	defaultQueueSize   = 32
)

// BlockerConfig names the shell commands run when blocking begins and ends.
// Empty commands are skipped.
type BlockerConfig struct {
	BeginCommand string
	EndCommand   string
	Shell        string
	Timeout      time.Duration
	Logger       *slog.Logger
}

// CommandBlocker implements the blocking port. Calls only enqueue; Run
// executes hooks one at a time in call order.
type CommandBlocker struct {
	cfg    BlockerConfig
	logger *slog.Logger
	jobs   chan hookJob

	mu      sync.Mutex
	profile *domain.BlockingProfile
}

type hookJob struct {
	phase   string
	command string
	profile *domain.BlockingProfile
}

func NewCommandBlocker(cfg BlockerConfig) *CommandBlocker {
	if cfg.Shell == "" {
		cfg.Shell = "/bin/sh"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHookTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CommandBlocker{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "blocker"),
		jobs:   make(chan hookJob, defaultQueueSize),
	}
}

func (b *CommandBlocker) BeginBlocking() {
	b.enqueue("begin", b.cfg.BeginCommand)
}

func (b *CommandBlocker) EndBlocking() {
	b.enqueue("end", b.cfg.EndCommand)
}

// OverrideSelection sets the profile passed to subsequent hooks; nil restores
// the default selection.
func (b *CommandBlocker) OverrideSelection(profile *domain.BlockingProfile) {
	b.mu.Lock()
	b.profile = profile
	b.mu.Unlock()
	if profile == nil {
		b.logger.Debug("blocking profile override cleared")
		return
	}
	b.logger.Debug("blocking profile override", "profile", profile.Name)
}

// Profile returns the current override, or nil.
func (b *CommandBlocker) Profile() *domain.BlockingProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile
}

func (b *CommandBlocker) enqueue(phase, command string) {
	if strings.TrimSpace(command) == "" {
		return
	}
	job := hookJob{phase: phase, command: command, profile: b.Profile()}
	select {
	case b.jobs <- job:
	default:
		b.logger.Warn("hook queue full, skipping", "phase", phase)
	}
}

// Run executes queued hooks until ctx is cancelled.
func (b *CommandBlocker) Run(ctx context.Context) error {
	for {
		select {
		case job := <-b.jobs:
			b.exec(ctx, job)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *CommandBlocker) exec(ctx context.Context, job hookJob) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	// #nosec G204 -- the command comes from the user's own configuration
	cmd := exec.CommandContext(ctx, b.cfg.Shell, "-c", job.command)
	cmd.Env = append(os.Environ(), hookEnv(job)...)
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if err != nil {
		b.logger.Warn("blocking hook failed",
			"phase", job.phase,
			"error", err,
			"output", strings.TrimSpace(string(out)))
		return
	}
	b.logger.Debug("blocking hook ran", "phase", job.phase)
}

func hookEnv(job hookJob) []string {
	env := []string{"FOCUSSYNC_BLOCKING=" + job.phase}
	if job.profile != nil {
		env = append(env,
			"FOCUSSYNC_PROFILE="+job.profile.Name,
			"FOCUSSYNC_PROFILE_RULES="+strings.Join(job.profile.Rules, "\n"))
	}
	return env
}
