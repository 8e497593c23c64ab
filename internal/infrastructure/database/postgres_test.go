package database

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/interview-assistant/errors"
	"github.com/johnquangdev/interview-assistant/pkg/config"
)

func TestNewPostgresDB_ConnectionFailure(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		User:     "postgres",
		Password: "postgres",
		Name:     "interview_assistant",
		SSLMode:  "disable",
	}}

	db, err := NewPostgresDB(cfg, nil)
	require.Error(t, err)
	assert.Nil(t, db)

	var appErr apperrors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_DB_CONNECTION_FAILED, appErr.Code)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	migrations, err := Migrations().FindMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_interview_schema.sql", migrations[0].Id)
}
