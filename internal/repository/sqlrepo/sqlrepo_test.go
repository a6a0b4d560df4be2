package sqlrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
	"tasktracker/internal/repository/repotest"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", model.NewID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Store {
		return New(newTestDB(t))
	})
}

func TestTranslateError(t *testing.T) {
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), repository.ErrDuplicateKey)
	assert.ErrorIs(t, translateError(fmt.Errorf("wrapped: %w", &mysqldriver.MySQLError{Number: 1062})), repository.ErrDuplicateKey)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
	assert.NotErrorIs(t, translateError(&mysqldriver.MySQLError{Number: 1045}), repository.ErrDuplicateKey)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "100!%", escapeLike("100%"))
	assert.Equal(t, "a!_b", escapeLike("a_b"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
	assert.Equal(t, "plain", escapeLike("plain"))
}
