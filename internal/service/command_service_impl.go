package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/focussync/internal/db"
	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type commandService struct {
	commands repository.CommandRepo
	uow      db.UnitOfWork
	clock    clockwork.Clock
	observer UseCaseObserver
}

func NewCommandService(commands repository.CommandRepo, uow db.UnitOfWork, clock clockwork.Clock, observers ...UseCaseObserver) CommandService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &commandService{
		commands: commands,
		uow:      uow,
		clock:    clock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *commandService) Enqueue(ctx context.Context, action domain.CommandAction, source string) (cmd *domain.Command, err error) {
	defer observe(ctx, s.observer, "enqueue-command", time.Now(), &err,
		slog.String("action", string(action)),
		slog.String("source", source))

	if !domain.ValidCommandActions[string(action)] {
		return nil, fmt.Errorf("invalid command action %q (want start or stop)", action)
	}
	now := s.clock.Now().UTC()
	cmd = &domain.Command{
		ID:        uuid.New().String(),
		Action:    action,
		IssuedAt:  now,
		CreatedAt: now,
		Source:    source,
	}
	if err := s.commands.Create(ctx, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// TakeFresh drains the queue in one transaction. Only the newest command
// issued within maxAge of now is returned; everything else is discarded.
func (s *commandService) TakeFresh(ctx context.Context, now time.Time, maxAge time.Duration) (*domain.Command, error) {
	var fresh *domain.Command
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCommands := repository.NewSQLiteCommandRepo(tx)

		pending, err := txCommands.ListPending(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		if _, err := txCommands.DeleteAll(ctx); err != nil {
			return err
		}

		newest := pending[len(pending)-1]
		age := now.Sub(newest.IssuedAt)
		if age <= maxAge && age >= -maxAge {
			fresh = newest
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("taking widget commands: %w", err)
	}
	return fresh, nil
}
