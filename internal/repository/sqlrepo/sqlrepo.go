// Package sqlrepo is the GORM store driver.
package sqlrepo

import (
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const mysqlErrDuplicateEntry = 1062

func New(db *gorm.DB) repository.Store {
	return repository.Store{
		Users:      NewUserRepository(db),
		Tasks:      NewTaskRepository(db),
		Activities: NewActivityRepository(db),
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.Activity{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

// translateError maps unique index violations onto repository.ErrDuplicateKey.
// gorm.ErrDuplicatedKey needs TranslateError on the gorm config; the raw
// MySQL error number covers connections opened without it.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicateKey
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
		return repository.ErrDuplicateKey
	}
	return err
}
