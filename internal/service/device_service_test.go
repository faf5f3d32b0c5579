package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/alexanderramin/focussync/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceService_EnsureOriginIDIsStable(t *testing.T) {
	svc := NewDeviceService(repository.NewSQLiteDeviceRepo(testutil.NewTestDB(t)))
	ctx := context.Background()

	first, err := svc.EnsureOriginID(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	assert.NoError(t, err)

	second, err := svc.EnsureOriginID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeviceService_Rename(t *testing.T) {
	svc := NewDeviceService(repository.NewSQLiteDeviceRepo(testutil.NewTestDB(t)))
	ctx := context.Background()

	assert.Error(t, svc.Rename(ctx, "   "))
	require.NoError(t, svc.Rename(ctx, " desk "))

	d, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "desk", d.Name)
}
