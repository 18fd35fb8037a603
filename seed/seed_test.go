package seed

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"switchseed/db"
	"switchseed/model"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *db.SQLStore {
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "switches.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	return db.NewSQLStore(database)
}

func envLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func newSeeder(t *testing.T, store db.Store, env map[string]string) (*Seeder, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Seeder{
		Store:  store,
		Lookup: envLookup(env),
		Out:    out,
		Logger: zaptest.NewLogger(t).Sugar(),
	}, out
}

func TestSeedCreatesEverySwitch(t *testing.T) {
	store := setupTestStore(t)
	seeder, out := newSeeder(t, store, map[string]string{SlsxEnabledEnvVar: "True"})
	ctx := context.Background()

	results, err := seeder.Seed(ctx, DefaultSwitches)
	require.NoError(t, err)
	require.Len(t, results, len(DefaultSwitches))

	for i, d := range DefaultSwitches {
		assert.True(t, results[i].Created, d.Name)
		sw, err := store.GetSwitchByName(ctx, d.Name)
		require.NoError(t, err, d.Name)
		assert.Equal(t, d.Active, sw.Active, d.Name)
		assert.Equal(t, seededNote, sw.Note)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(DefaultSwitches))
	assert.Equal(t, "Feature switch created: (outreach_email, true)", lines[0])
	assert.Equal(t, "Feature switch created: (slsx-enable, true)", lines[5])

	events, err := store.ListAuditEvents(ctx, model.ActionSwitchCreated)
	require.NoError(t, err)
	assert.Len(t, events, len(DefaultSwitches))
}

func TestSeedIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, _ := newSeeder(t, store, map[string]string{SlsxEnabledEnvVar: "False"})
	_, err := first.Seed(ctx, DefaultSwitches)
	require.NoError(t, err)

	// a different value on the second run must not change the stored one
	second, out := newSeeder(t, store, map[string]string{SlsxEnabledEnvVar: "True"})
	results, err := second.Seed(ctx, DefaultSwitches)
	require.NoError(t, err)

	for _, r := range results {
		assert.False(t, r.Created, r.Switch.Name)
	}
	assert.Contains(t, out.String(), "Feature switch already exists: (login, true)")
	// the seed entry is reported, the stored value stays false
	assert.Contains(t, out.String(), "Feature switch already exists: (slsx-enable, true)")
	assert.NotContains(t, out.String(), "created")

	switches, err := store.ListSwitches(ctx)
	require.NoError(t, err)
	assert.Len(t, switches, len(DefaultSwitches))

	sw, err := store.GetSwitchByName(ctx, "slsx-enable")
	require.NoError(t, err)
	assert.False(t, sw.Active)
}

func TestSeedSlsxOverride(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		active bool
	}{
		{name: "literal False disables", value: "False", active: false},
		{name: "True enables", value: "True", active: true},
		{name: "lowercase false enables", value: "false", active: true},
		{name: "zero enables", value: "0", active: true},
		{name: "empty string enables", value: "", active: true},
		{name: "padded False enables", value: " False", active: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			seeder, _ := newSeeder(t, store, map[string]string{SlsxEnabledEnvVar: tt.value})

			_, err := seeder.Seed(context.Background(), DefaultSwitches)
			require.NoError(t, err)

			sw, err := store.GetSwitchByName(context.Background(), "slsx-enable")
			require.NoError(t, err)
			assert.Equal(t, tt.active, sw.Active)
		})
	}
}

func TestSeedMissingEnvFails(t *testing.T) {
	store := setupTestStore(t)
	seeder, out := newSeeder(t, store, nil)
	ctx := context.Background()

	results, err := seeder.Seed(ctx, DefaultSwitches)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), SlsxEnabledEnvVar)

	// switches ahead of slsx-enable are kept
	assert.Len(t, results, len(DefaultSwitches)-1)
	assert.NotContains(t, out.String(), "slsx-enable")
	_, err = store.GetSwitchByName(ctx, "slsx-enable")
	assert.ErrorIs(t, err, db.ErrSwitchNotFound)
}

func TestSeedExistingOverrideSkipsEnv(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateSwitch(ctx, &model.Switch{Name: "slsx-enable", Active: false}))

	seeder, _ := newSeeder(t, store, nil)
	results, err := seeder.Seed(ctx, DefaultSwitches)
	require.NoError(t, err)
	assert.Len(t, results, len(DefaultSwitches))
	assert.False(t, results[5].Created)
	assert.False(t, results[5].Switch.Active)
}

type failingStore struct {
	db.Store
	err error
}

func (f failingStore) GetSwitchByName(context.Context, string) (*model.Switch, error) {
	return nil, f.err
}

func TestSeedPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk I/O error")
	seeder := &Seeder{Store: failingStore{err: boom}, Logger: zap.NewNop().Sugar()}

	results, err := seeder.Seed(context.Background(), DefaultSwitches)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, results)
}

func TestParseEnabled(t *testing.T) {
	assert.False(t, ParseEnabled("False"))
	assert.True(t, ParseEnabled("FALSE"))
	assert.True(t, ParseEnabled("True"))
	assert.True(t, ParseEnabled(""))
}

func TestLoadDefaults(t *testing.T) {
	t.Run("falls back to the built-in table", func(t *testing.T) {
		defaults, err := LoadDefaults(viper.New())
		require.NoError(t, err)
		assert.Equal(t, DefaultSwitches, defaults)

		defaults, err = LoadDefaults(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultSwitches, defaults)
	})

	t.Run("reads switches from config", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(`
switches:
  - name: login
    active: false
  - name: beta-dashboard
    active: true
  - name: login
    active: true
`)))

		defaults, err := LoadDefaults(v)
		require.NoError(t, err)
		assert.Equal(t, []model.SwitchDefault{
			{Name: "login", Active: false},
			{Name: "beta-dashboard", Active: true},
		}, defaults)
	})

	t.Run("rejects unnamed switches", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(`
switches:
  - active: true
`)))

		_, err := LoadDefaults(v)
		assert.ErrorIs(t, err, ErrEmptySwitchName)
	})
}
