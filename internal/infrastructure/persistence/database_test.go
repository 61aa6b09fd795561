package persistence

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPingedDatabase wraps a sqlmock connection that records pings
func newPingedDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	cfg := GormConfig(logger.Discard)
	cfg.DisableAutomaticPing = true
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), cfg)
	require.NoError(t, err)
	return &Database{DB: db}, mock
}

func TestGormConfig(t *testing.T) {
	cfg := GormConfig(logger.Discard)
	assert.True(t, cfg.TranslateError)
	assert.True(t, cfg.SkipDefaultTransaction)
	assert.Equal(t, logger.Discard, cfg.Logger)
}

func TestGormConfig_TranslatesUniqueViolation(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)

	first := models.QuotationModelFromDomain(newTestQuotation(t, "017123456789", now))
	require.NoError(t, db.Create(first).Error)

	// Same second, same order number
	second := models.QuotationModelFromDomain(newTestQuotation(t, "017999888777", now))
	err := db.Create(second).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestTranslateWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		onDuplicate *shared.DomainError
		wantCode    string
	}{
		{"duplicate with specific code", gorm.ErrDuplicatedKey, ErrDuplicateOrderNumber, "DUPLICATE_ORDER_NUMBER"},
		{"duplicate without specific code", gorm.ErrDuplicatedKey, nil, "INTEGRITY_ERROR"},
		{"wrapped duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), nil, "INTEGRITY_ERROR"},
		{"foreign key", gorm.ErrForeignKeyViolated, ErrDuplicateOrderNumber, "INTEGRITY_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateWriteError(tt.err, tt.onDuplicate)
			requireDomainCode(t, err, tt.wantCode)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("nil and unrelated errors pass through", func(t *testing.T) {
		assert.NoError(t, translateWriteError(nil, ErrDuplicateOrderNumber))
		assert.Equal(t, assert.AnError, translateWriteError(assert.AnError, nil))
	})
}

func TestTranslateNotFound(t *testing.T) {
	assert.ErrorIs(t, translateNotFound(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.Equal(t, assert.AnError, translateNotFound(assert.AnError))
}

func TestDatabase_PingAndClose(t *testing.T) {
	db, mock := newPingedDatabase(t)

	mock.ExpectPing()
	assert.NoError(t, db.Ping())

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.EqualError(t, db.Ping(), "connection refused")

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
