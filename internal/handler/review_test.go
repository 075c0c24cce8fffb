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

func newReviewHandler(t *testing.T) (*ReviewHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewReviewHandler(repository.NewReviewRepo(db), repository.NewTitleRepo(db)), mock
}

func reviewCreateCtx(titleID, body string, actor model.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/titles/"+titleID+"/reviews", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("title_id")
	c.SetParamValues(titleID)
	c.Set("actor", actor)
	return c, rec
}

func TestCreateReviewSecondAttemptConflicts(t *testing.T) {
	h, mock := newReviewHandler(t)
	actor := model.Actor{ID: 42, Role: model.RoleUser, Authenticated: true}

	mock.ExpectQuery("SELECT 1 FROM titles WHERE id=? LIMIT 1").
		WithArgs(uint64(5)).
		WillReturnRows(mock.NewRows([]string{"1"}).AddRow(1))
	// The author already has a review for this title.
	mock.ExpectQuery("SELECT 1 FROM reviews WHERE title_id=? AND author_id=? LIMIT 1").
		WithArgs(uint64(5), uint64(42)).
		WillReturnRows(mock.NewRows([]string{"1"}).AddRow(1))

	c, rec := reviewCreateCtx("5", `{"text":"great","score":8}`, actor)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already reviewed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewMissingTitleAnswers404(t *testing.T) {
	h, mock := newReviewHandler(t)
	actor := model.Actor{ID: 42, Role: model.RoleUser, Authenticated: true}

	mock.ExpectQuery("SELECT 1 FROM titles WHERE id=? LIMIT 1").
		WithArgs(uint64(5)).
		WillReturnRows(mock.NewRows([]string{"1"}))

	c, rec := reviewCreateCtx("5", `{"text":"great","score":8}`, actor)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewRejectsScoreOutOfRange(t *testing.T) {
	h, _ := newReviewHandler(t)
	actor := model.Actor{ID: 42, Role: model.RoleUser, Authenticated: true}

	c, rec := reviewCreateCtx("5", `{"text":"great","score":11}`, actor)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = reviewCreateCtx("5", `{"text":"great","score":-1}`, actor)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
