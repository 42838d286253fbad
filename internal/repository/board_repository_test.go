package repository_test

import (
	"context"
	"testing"

	"boardbuilder/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestBoardRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	boardID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT 1`).
		WithArgs(boardID).
		WillReturnError(gorm.ErrRecordNotFound)

	board, err := boardRepo.GetByID(context.Background(), boardID)

	assert.NoError(t, err)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetByUserIDAndSlug_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	userID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE user_id = .* AND slug = .* LIMIT 1`).
		WithArgs(userID, "my-board").
		WillReturnError(gorm.ErrRecordNotFound)

	board, err := boardRepo.GetByUserIDAndSlug(context.Background(), userID, "my-board")

	assert.NoError(t, err, `"no rows" translates to a nil result, not an error`)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_SlugExists(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards" WHERE user_id = .* AND slug = .*`).
		WithArgs(userID, "my-board").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := boardRepo.SlugExists(context.Background(), userID, "my-board")

	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	boardID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "boards"`).
		WithArgs(boardID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := boardRepo.Delete(context.Background(), boardID)

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
