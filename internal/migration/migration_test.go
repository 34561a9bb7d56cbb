package migration

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
)

func TestSourceURLIsAbsolute(t *testing.T) {
	url, err := SourceURL("../../migrations")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "file:///"))
	require.True(t, strings.HasSuffix(url, "/migrations"))
}

func TestMigrationsArePaired(t *testing.T) {
	url, err := SourceURL("../../migrations")
	require.NoError(t, err)
	src, err := (&file.File{}).Open(url)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), first)

	up, _, err := src.ReadUp(first)
	require.NoError(t, err)
	upSQL, err := io.ReadAll(up)
	require.NoError(t, err)
	up.Close()
	require.Contains(t, string(upSQL), "CREATE TABLE accounts")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	downSQL, err := io.ReadAll(down)
	require.NoError(t, err)
	down.Close()
	require.Contains(t, string(downSQL), "DROP TABLE IF EXISTS accounts")

	_, err = src.Next(first)
	require.True(t, errors.Is(err, fs.ErrNotExist), "expected a single migration, got %v", err)
}
