package workflow_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/internal/auth"
	"github.com/kosta-developer/DEVELOPER-Back/internal/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"
	"github.com/kosta-developer/DEVELOPER-Back/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpFixture struct {
	router chi.Router
	mem    *memStore
	tokens *auth.TokenManager
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := newMemStore()
	mem.addUser(admin.UserID, user.RoleAdmin)
	mem.addUser(tutee.UserID, user.RoleTutee)

	tokens := auth.NewTokenManager("test-secret", time.Minute)
	svc := workflow.NewService(mem.stores(), &recordingPublisher{}, metrics.NewMock(), logger)

	router := chi.NewRouter()
	router.Use(auth.IdentityMiddleware(tokens, logger))
	workflow.NewHandler(svc, logger).RegisterRoutes(router)

	return &httpFixture{router: router, mem: mem, tokens: tokens}
}

func (f *httpFixture) do(t *testing.T, method, path string, id auth.Identity, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if !id.Anonymous() {
		token, err := f.tokens.GenerateAccessToken(id.UserID, id.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPendingTutorsEndpoint(t *testing.T) {
	f := newHTTPFixture(t)

	w := f.do(t, http.MethodGet, "/admin/users/tutor", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no pending tutor applications", decodeBody(t, w)["message"])

	f.mem.addPendingTutor("kim")

	w = f.do(t, http.MethodGet, "/admin/users/tutor", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var apps []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "kim", apps[0]["userId"])

	w = f.do(t, http.MethodPatch, "/admin/users/tutor/kim", admin, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPatch, "/admin/users/tutor/kim", admin, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminGate(t *testing.T) {
	f := newHTTPFixture(t)

	paths := []string{"/admin", "/admin/users", "/admin/users/tutor", "/admin/host/unapprove", "/admin/lesson"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, path, tutee, "").Code)
			assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, path, anon, "").Code)
		})
	}

	w := f.do(t, http.MethodGet, "/admin/users", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestHostEndpoints(t *testing.T) {
	f := newHTTPFixture(t)

	w := f.do(t, http.MethodGet, "/admin/host/unapprove", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no pending host accounts", decodeBody(t, w)["message"])

	f.mem.addPendingHost("host1")
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/admin/host/unapprove", admin, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/admin/host/unapprove/host1", admin, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/admin/host/unapprove/host1", admin, "").Code)
}

func TestApplyEndpoint(t *testing.T) {
	f := newHTTPFixture(t)
	seq := f.mem.addLesson("kim")
	path := "/lesson/" + strconv.FormatInt(seq, 10)

	t.Run("Anonymous", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path, anon, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, f.mem.apps)
	})

	t.Run("InvalidSeq", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/lesson/abc", tutee, "").Code)
	})

	t.Run("UnknownField", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, path, tutee, `{"applyOk":1}`).Code)
	})

	t.Run("Created", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path, tutee, `{"memo":"mornings"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(0), body["applyOk"])
		assert.Equal(t, "tutee2", body["tuteeId"])
	})

	t.Run("Duplicate", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, path, tutee, "").Code)
	})

	t.Run("EmptyBodyOfUnknownLength", func(t *testing.T) {
		other := f.mem.addLesson("kim")
		req := httptest.NewRequest(http.MethodPost, "/lesson/"+strconv.FormatInt(other, 10), strings.NewReader(""))
		req.ContentLength = -1
		token, err := f.tokens.GenerateAccessToken(tutee.UserID, tutee.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, float64(0), decodeBody(t, w)["applyOk"])
		_, filed := f.mem.application(other, tutee.UserID)
		assert.True(t, filed)
	})

	t.Run("MissingLesson", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/lesson/999", tutee, "").Code)
	})

	t.Run("ApplicantsAndRemoval", func(t *testing.T) {
		applicantsPath := "/admin/lesson/detail/" + strconv.FormatInt(seq, 10)

		w := f.do(t, http.MethodGet, applicantsPath, admin, "")
		require.Equal(t, http.StatusOK, w.Code)
		var applicants []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &applicants))
		assert.Len(t, applicants, 1)

		assert.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, applicantsPath+"/tutee2", admin, "").Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPatch, applicantsPath+"/tutee2", admin, "").Code)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, applicantsPath+"/tutee2", admin, "").Code)

		w = f.do(t, http.MethodGet, applicantsPath, admin, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "null", w.Body.String())
	})
}

func TestFavoriteEndpoints(t *testing.T) {
	f := newHTTPFixture(t)
	seq := f.mem.addLesson("kim")
	srSeq := f.mem.addStudyroom("host1")

	w := f.do(t, http.MethodPost, "/lesson/favoriteslesson/"+strconv.FormatInt(seq, 10), tutee, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "favorite added", decodeBody(t, w)["message"])

	w = f.do(t, http.MethodPost, "/lesson/favoriteslesson/"+strconv.FormatInt(seq, 10), tutee, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	var favSeq int64
	for k := range f.mem.lessonFavs {
		favSeq = k
	}
	w = f.do(t, http.MethodDelete, "/lesson/favoriteslesson/"+strconv.FormatInt(favSeq, 10), tutee, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "favorite removed", decodeBody(t, w)["message"])

	w = f.do(t, http.MethodPost, "/studyroom/favorites/"+strconv.FormatInt(srSeq, 10), anon, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/studyroom/favorites/"+strconv.FormatInt(srSeq, 10), tutee, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDeleteUserEndpoint(t *testing.T) {
	f := newHTTPFixture(t)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, "/admin/users/detail/tutee2", tutee, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/admin/users/detail/tutee2", admin, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/admin/users/detail/tutee2", admin, "").Code)
}
