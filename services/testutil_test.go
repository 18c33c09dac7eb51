// services/testutil_test.go - Shared fixtures for service tests
package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"skaila/database"
	"skaila/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

// setupTestDB wires a fresh in-memory database into the service layer.
// Shared cache keeps the database alive across the pool's connections,
// which the concurrency tests need.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:skaila_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.MigrateAll(db))
	database.SetDB(db)
	return db
}

func createStudent(t *testing.T, db *gorm.DB, username, class string) models.User {
	t.Helper()
	user := models.User{
		Username:    username,
		DisplayName: username,
		Role:        "student",
		School:      "ITIS Galilei",
		Class:       class,
		Year:        3,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTeacher(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:    username,
		DisplayName: username,
		Role:        "teacher",
		School:      "ITIS Galilei",
		Class:       "3A",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
