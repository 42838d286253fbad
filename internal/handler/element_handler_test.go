package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestElementHandler_Sync_RejectsUnknownBlockType(t *testing.T) {
	env := setupBoardEnv(t)
	boardID := uuid.New()

	env.mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(boardColumns()).
			AddRow(boardID.String(), env.userID.String(), "Mine", "mine", "", `{"columns":4,"gap":16}`, `[]`, "private"))

	body := fmt.Sprintf(`{"blocks":[{"id":%q,"type":"hologram"}]}`, uuid.NewString())
	w := env.do(http.MethodPut, "/api/boards/"+boardID.String()+"/elements", env.token, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "blocks[0].type")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestElementHandler_Sync_EmptyListDeletesStaleRows(t *testing.T) {
	env := setupBoardEnv(t)
	boardID := uuid.New()
	staleID := uuid.New()

	env.mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(boardColumns()).
			AddRow(boardID.String(), env.userID.String(), "Mine", "mine", "", `{"columns":4,"gap":16}`, `[]`, "private"))

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`SELECT "id" FROM "board_elements" WHERE board_id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(staleID.String()))
	env.mock.ExpectExec(`DELETE FROM "board_elements" WHERE id IN .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	env.mock.ExpectQuery(`SELECT .* FROM "board_elements" WHERE board_id = .* ORDER BY z_index`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "type", "z_index"}))

	w := env.do(http.MethodPut, "/api/boards/"+boardID.String()+"/elements", env.token, `{"blocks":[]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestElementHandler_Sync_EditorWithoutGrantForbidden(t *testing.T) {
	env := setupBoardEnv(t)
	boardID := uuid.New()
	otherOwner := uuid.New()

	env.mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(boardColumns()).
			AddRow(boardID.String(), otherOwner.String(), "Theirs", "theirs", "", `{"columns":4,"gap":16}`, `[]`, "public"))
	env.mock.ExpectQuery(`SELECT .* FROM "board_collaborators" WHERE board_id = .* AND user_id = .* LIMIT 1`).
		WillReturnError(gorm.ErrRecordNotFound)

	w := env.do(http.MethodPut, "/api/boards/"+boardID.String()+"/elements", env.token, `{"blocks":[]}`)

	assert.Equal(t, http.StatusForbidden, w.Code, "public visibility grants viewing, never editing")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestElementHandler_List_ReturnsZOrder(t *testing.T) {
	env := setupBoardEnv(t)
	boardID := uuid.New()

	env.mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(boardColumns()).
			AddRow(boardID.String(), env.userID.String(), "Mine", "mine", "", `{"columns":4,"gap":16}`, `[]`, "private"))
	env.mock.ExpectQuery(`SELECT .* FROM "board_elements" WHERE board_id = .* ORDER BY z_index`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "type", "data", "z_index"}).
			AddRow(uuid.NewString(), boardID.String(), "text", `{"text":"hi"}`, 0).
			AddRow(uuid.NewString(), boardID.String(), "image", `{"src":"/a.png"}`, 1))

	w := env.do(http.MethodGet, "/api/boards/"+boardID.String()+"/elements", env.token, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"zIndex":0`)
	assert.Contains(t, w.Body.String(), `"zIndex":1`)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
