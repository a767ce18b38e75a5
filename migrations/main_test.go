package migrations_test

import (
	"testing"

	"github.com/rehaber/rehaber-backend/internal/database"
	"github.com/rehaber/rehaber-backend/migrations"
	"github.com/rehaber/rehaber-backend/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tables = []string{"engagements", "comments", "registrations", "video_progress", "notifications"}

func TestRunMigrationsUpDown(t *testing.T) {
	db := testhelper.OpenTestDB(t)
	log := testhelper.NewTestLogger(false)
	cfg := database.NewMigrationConfig(db)
	cfg.ForceRun = true

	require.NoError(t, migrations.RunMigrations(db, "up", cfg, log))
	for _, table := range tables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("engagements", "ux_engagement_key"))

	applied, err := cfg.GetAppliedMigrations()
	require.NoError(t, err)
	assert.Len(t, applied, len(tables))

	// a second run is a no-op
	require.NoError(t, migrations.RunMigrations(db, "up", cfg, log))
	applied, err = cfg.GetAppliedMigrations()
	require.NoError(t, err)
	assert.Len(t, applied, len(tables))

	require.NoError(t, migrations.RunMigrations(db, "down", cfg, log))
	for _, table := range tables {
		assert.False(t, db.Migrator().HasTable(table), table)
	}
	applied, err = cfg.GetAppliedMigrations()
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRunMigrationsSkippedInProduction(t *testing.T) {
	db := testhelper.OpenTestDB(t)
	cfg := database.NewMigrationConfig(db)
	cfg.Environment = "production"
	cfg.AutoMigrate = true
	cfg.ForceRun = false

	require.NoError(t, migrations.RunMigrations(db, "up", cfg, testhelper.NewTestLogger(false)))
	assert.False(t, db.Migrator().HasTable("engagements"))
}

func TestRunMigrationsInvalidDirection(t *testing.T) {
	db := testhelper.OpenTestDB(t)
	cfg := database.NewMigrationConfig(db)
	cfg.ForceRun = true
	assert.Error(t, migrations.RunMigrations(db, "sideways", cfg, testhelper.NewTestLogger(false)))
}
