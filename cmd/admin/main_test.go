package main

import (
	"bytes"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/notify"
	"campuscart/backend/internal/storage"
	"campuscart/backend/internal/storage/storagetest"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	s, _ := storagetest.New(t)
	out := &bytes.Buffer{}
	return &app{store: s, notify: notify.NewDispatcher(s, zaptest.NewLogger(t)), out: out}, out
}

func TestCreateUser(t *testing.T) {
	a, out := newApp(t)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, "create-user", []string{"Root@Uni.edu", "s3cret", "Root", "Admin", "admin", "uni-1"}))
	assert.Contains(t, out.String(), "root@uni.edu")

	u, err := a.store.GetUserByEmail(ctx, "root@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	require.NotNil(t, u.UniversityID)
	assert.Equal(t, "uni-1", *u.UniversityID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))

	assert.Error(t, a.run(ctx, "create-user", []string{"x@uni.edu", "pw", "X", "Y", "owner"}))
}

func TestSuspendAndActivate(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()
	u := storagetest.SeedUser(t, a.store, "Ana")

	require.NoError(t, a.run(ctx, "suspend", []string{u.ID}))
	got, err := a.store.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, got.Status)

	require.NoError(t, a.run(ctx, "activate", []string{u.ID}))
	got, err = a.store.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive())

	assert.ErrorIs(t, a.run(ctx, "suspend", []string{"missing"}), storage.ErrNotFound)
}

func TestNotifyCommands(t *testing.T) {
	a, out := newApp(t)
	ctx := context.Background()
	ana := storagetest.SeedUser(t, a.store, "Ana", storagetest.WithUniversity("uni-1"))
	storagetest.SeedUser(t, a.store, "Bo", storagetest.WithUniversity("uni-1"))

	require.NoError(t, a.run(ctx, "notify", []string{ana.ID, "system", "Hello", "welcome", "aboard"}))
	page, err := a.notify.List(ctx, ana.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "welcome aboard", page.Items[0].Message)

	out.Reset()
	require.NoError(t, a.run(ctx, "notify-university", []string{"uni-1", "announcement", "Fair"}))
	assert.Equal(t, "Delivered 2, failed 0.\n", out.String())

	require.NoError(t, a.run(ctx, "broadcast", []string{"system", "Maintenance tonight"}))
	assert.ErrorIs(t, a.run(ctx, "notify", []string{ana.ID, "spam", "x"}), notify.ErrInvalidRequest)

	_, err = a.notify.MarkAllRead(ctx, ana.ID)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, a.run(ctx, "clear-read", []string{ana.ID}))
	assert.Equal(t, "Deleted 2 read notifications.\n", out.String())
}

func TestUsageErrors(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()
	for _, tc := range []struct {
		cmd  string
		args []string
	}{
		{"ban", []string{"u1"}},
		{"suspend", nil},
		{"notify", []string{"u1", "system"}},
		{"broadcast", []string{"system"}},
		{"create-user", []string{"a@b.c"}},
	} {
		assert.ErrorIs(t, a.run(ctx, tc.cmd, tc.args), errUsage, tc.cmd)
	}
}
