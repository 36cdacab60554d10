package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/juan-esteban-berger/fit-app/activitystore"
	"github.com/juan-esteban-berger/fit-app/internal/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDirWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	logger, hook := test.NewNullLogger()

	cfg := &config.Config{
		Source: config.SourceConfig{Kind: "dir", Dir: t.TempDir()},
		Redis:  config.RedisConfig{Enabled: true, Addr: mr.Addr(), TTL: time.Hour},
	}
	b, err := Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &activitystore.DirSource{}, b.Sources.Activities)
	assert.Nil(t, b.Sources.Body)
	require.NotNil(t, b.Cache)
	assert.Equal(t, "connected to Redis", hook.LastEntry().Message)
}

func TestOpenSQLite(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		Source: config.SourceConfig{Kind: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "a.db")},
	}
	b, err := Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &activitystore.SQLiteSource{}, b.Sources.Activities)
	assert.Nil(t, b.Cache)
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		Source: config.SourceConfig{Kind: "dir", Dir: t.TempDir()},
		Redis:  config.RedisConfig{Enabled: true, Addr: addr},
	}
	b, err := Open(context.Background(), cfg, logger)
	assert.ErrorContains(t, err, "connect to redis")
	assert.Nil(t, b)
}

func TestOpenUnknownKind(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := Open(context.Background(), &config.Config{Source: config.SourceConfig{Kind: "ftp"}}, logger)
	assert.ErrorContains(t, err, "unsupported source.kind")
}
