package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

func newUserAdminHandler(t *testing.T) (*UserAdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserAdminHandler(repository.NewUserRepo(db)), mock
}

func adminCreateCtx(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAdminCreateUserSingleInsert(t *testing.T) {
	h, mock := newUserAdminHandler(t)

	// Role and profile land in the same INSERT; there is no follow-up
	// UPDATE that could leave a default-role row behind on failure.
	mock.ExpectExec("INSERT INTO users (username, email, role, first_name, last_name, bio) VALUES (?,?,?,?,?,?)").
		WithArgs("mod", "mod@x.com", model.RoleModerator, "Mo", "Derator", "keeps order").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(selectUserByID).WithArgs(uint64(11)).
		WillReturnRows(mock.NewRows(userCols).
			AddRow(11, "mod", "mod@x.com", model.RoleModerator, "keeps order", "Mo", "Derator", "", false, nowUTC(), nowUTC()))

	c, rec := adminCreateCtx(`{"username":"mod","email":"mod@x.com","role":"moderator","first_name":"Mo","last_name":"Derator","bio":"keeps order"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"moderator"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateUserDefaultsRole(t *testing.T) {
	h, mock := newUserAdminHandler(t)

	mock.ExpectExec("INSERT INTO users (username, email, role, first_name, last_name, bio) VALUES (?,?,?,?,?,?)").
		WithArgs("plain", "plain@x.com", model.RoleUser, "", "", "").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(selectUserByID).WithArgs(uint64(12)).
		WillReturnRows(userRow(mock, 12, "plain", "plain@x.com"))

	c, rec := adminCreateCtx(`{"username":"plain","email":"plain@x.com"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateUserRejectsUnknownRole(t *testing.T) {
	h, mock := newUserAdminHandler(t)

	c, rec := adminCreateCtx(`{"username":"x","email":"x@x.com","role":"owner"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
