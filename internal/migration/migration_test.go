package migration

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApplySQLiteIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, ApplySQLite(db))
	require.NoError(t, ApplySQLite(db))

	for _, table := range []string{
		"coupons", "coupon_redemptions", "reservation_coupons",
		"users", "trips", "reservations", "passengers", "seats", "passenger_seats",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestSplitStatementsSkipsBlanks(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (id INTEGER);\n\n  ;CREATE TABLE b (id INTEGER);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INTEGER)", "CREATE TABLE b (id INTEGER)"}, stmts)
}

func TestEmbeddedDialectsShipSameVersions(t *testing.T) {
	for _, dialect := range []string{"postgres", "mysql"} {
		entries, err := embeddedMigrations.ReadDir(migrationsDir + "/" + dialect)
		require.NoError(t, err)
		assert.Len(t, entries, 6, dialect)
	}
}

func TestRunMigrationsRejectsUnknownDialect(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration_unknown?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	assert.Error(t, RunMigrations(db, "oracle"))
}
