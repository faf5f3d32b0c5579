package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/google/uuid"
)

type deviceService struct {
	devices  repository.DeviceRepo
	observer UseCaseObserver
}

func NewDeviceService(devices repository.DeviceRepo, observers ...UseCaseObserver) DeviceService {
	return &deviceService{devices: devices, observer: useCaseObserverOrNoop(observers)}
}

func (s *deviceService) EnsureOriginID(ctx context.Context) (id string, err error) {
	defer observe(ctx, s.observer, "ensure-origin-id", time.Now(), &err)

	d, err := s.devices.Get(ctx)
	if err == nil {
		return d.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("loading device identity: %w", err)
	}

	name, _ := os.Hostname()
	d, err = s.devices.Create(ctx, &domain.Device{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("creating device identity: %w", err)
	}
	return d.ID, nil
}

func (s *deviceService) Get(ctx context.Context) (*domain.Device, error) {
	return s.devices.Get(ctx)
}

func (s *deviceService) Rename(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("device name must not be empty")
	}
	if _, err := s.EnsureOriginID(ctx); err != nil {
		return err
	}
	return s.devices.Rename(ctx, name)
}
