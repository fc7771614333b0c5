package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(Core, "core/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	data, err := fs.ReadFile(Core, files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
}
