package service_test

import (
	"context"
	"testing"

	"boardbuilder/internal/model"
	"boardbuilder/internal/repository"
	"boardbuilder/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*service.BoardService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	svc := service.NewBoardService(
		repository.NewBoardRepository(gormDB),
		repository.NewElementRepository(gormDB),
		repository.NewUserRepository(gormDB),
		zap.NewNop(),
	)
	return svc, mock
}

func TestBoardService_Create_DerivesSlugAndDefaults(t *testing.T) {
	svc, mock := setupService(t)
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards" WHERE user_id = .* AND slug = .*`).
		WithArgs(ownerID, "my-board").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	board, err := svc.Create(context.Background(), ownerID, service.CreateBoardInput{
		Title: "My Board!!",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, board) {
		assert.Equal(t, "my-board", board.Slug)
		assert.Equal(t, "My Board!!", board.Title)
		assert.Equal(t, model.VisibilityPrivate, board.Visibility)
		assert.JSONEq(t, `{"columns":4,"gap":16}`, string(board.GridConfig))
		assert.JSONEq(t, `[]`, string(board.Blocks))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardService_Create_UniquifiesTakenSlug(t *testing.T) {
	svc, mock := setupService(t)
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WithArgs(ownerID, "my-board").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WithArgs(ownerID, "my-board-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	board, err := svc.Create(context.Background(), ownerID, service.CreateBoardInput{
		Title: "My Board",
		Slug:  "my-board",
	})

	assert.NoError(t, err)
	assert.Equal(t, "my-board-1", board.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardService_Create_RequiresTitleOrSlug(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), uuid.New(), service.CreateBoardInput{})

	assert.ErrorIs(t, err, service.ErrTitleOrSlugRequired)
}

func TestBoardService_Create_MalformedGridConfigFallsBack(t *testing.T) {
	svc, mock := setupService(t)
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	board, err := svc.Create(context.Background(), ownerID, service.CreateBoardInput{
		Title:      "Launch Page",
		GridConfig: []byte(`{"columns":"four"}`),
		Blocks:     []byte(`not json`),
	})

	assert.NoError(t, err)
	assert.JSONEq(t, `{"columns":4,"gap":16}`, string(board.GridConfig))
	assert.JSONEq(t, `[]`, string(board.Blocks))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardService_Update_NoChanges(t *testing.T) {
	svc, _ := setupService(t)
	board := &model.Board{ID: uuid.New(), UserID: uuid.New(), Slug: "my-board"}

	_, err := svc.Update(context.Background(), board, service.UpdateBoardInput{})

	assert.ErrorIs(t, err, service.ErrNoChanges)
}

func TestBoardService_Update_SameSlugIsNotAChange(t *testing.T) {
	svc, _ := setupService(t)
	board := &model.Board{ID: uuid.New(), UserID: uuid.New(), Slug: "my-board"}
	same := "my-board"

	_, err := svc.Update(context.Background(), board, service.UpdateBoardInput{Slug: &same})

	assert.ErrorIs(t, err, service.ErrNoChanges)
}

func TestBoardService_GetByUsernameAndSlug_UnknownUser(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE username = .* LIMIT 1`).
		WithArgs("ghost").
		WillReturnError(gorm.ErrRecordNotFound)

	board, err := svc.GetByUsernameAndSlug(context.Background(), "ghost", "my-board")

	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardService_GetByUsernameAndSlug_UnknownSlug(t *testing.T) {
	svc, mock := setupService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE username = .* LIMIT 1`).
		WithArgs("maker").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username"}).
			AddRow(userID.String(), "maker@example.com", "maker"))
	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE user_id = .* AND slug = .* LIMIT 1`).
		WithArgs(userID, "missing").
		WillReturnError(gorm.ErrRecordNotFound)

	board, err := svc.GetByUsernameAndSlug(context.Background(), "maker", "missing")

	assert.NoError(t, err, "an unknown slug is a nil board, not an error")
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}
