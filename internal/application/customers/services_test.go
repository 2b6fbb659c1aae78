package customers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/callprep/internal/application"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	domain "github.com/bryanwahyu/callprep/internal/domain/customers"
	"github.com/bryanwahyu/callprep/internal/infra/db/memory"
)

var now = time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)

func newService() *Service {
	return &Service{Repo: memory.NewCustomerRepository(), Clock: application.FixedClock{T: now}}
}

func TestCreate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "alice", "  Acme Corp ")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Acme Corp", c.Name)
	assert.Equal(t, "alice", c.OwnerID)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)

	got, err := svc.Get(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService()
	for _, name := range []string{"", "   ", strings.Repeat("x", 201)} {
		_, err := svc.Create(context.Background(), "alice", name)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestGet_OtherOwner(t *testing.T) {
	svc := newService()
	c, err := svc.Create(context.Background(), "alice", "Acme")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "bob", c.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, _ = svc.Create(ctx, "alice", "Acme")
	_, _ = svc.Create(ctx, "alice", "Globex")
	_, _ = svc.Create(ctx, "bob", "Initech")

	list, err = svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

type brokenRepo struct{ domain.Repository }

func (brokenRepo) Create(context.Context, *domain.Customer) error { return errors.New("disk full") }

func TestCreate_StoreFailure(t *testing.T) {
	svc := &Service{Repo: brokenRepo{}, Clock: application.FixedClock{T: now}}
	_, err := svc.Create(context.Background(), "alice", "Acme")
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}
