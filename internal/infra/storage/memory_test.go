package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/callprep/internal/config"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Put(ctx, "a/b.txt", strings.NewReader("hello"), 5, "text/plain"))

	data, err := s.Get(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data[0] = 'j'
	again, err := s.Get(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))
}

func TestMemoryStore_MissingKey(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrFileNotFound)
}

func TestNew_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.NoError(t, s.Check(ctx))

	_, err = New(ctx, config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
