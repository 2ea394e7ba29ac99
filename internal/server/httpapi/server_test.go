package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pantrysync/restock/internal/logging"
	"github.com/pantrysync/restock/internal/server/snapshots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*Server, *snapshots.MemoryRepository) {
	repo := snapshots.NewMemoryRepository()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return NewServer(":0", repo, 1<<20, logger), repo
}

func TestGetSnapshot_NotFound(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/kitchen-1", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSnapshot_InvalidCode(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/Bad%20Code", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutSnapshot_RoundTrip(t *testing.T) {
	s, repo := newTestServer()

	payload := `[{"id":"a","name":"Milk","addedDate":1756600000000,"status":"active"}]`
	req := httptest.NewRequest(http.MethodPost, "/kitchen-1", strings.NewReader(payload))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	stored, err := repo.Get(context.Background(), "kitchen-1")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(stored))

	req = httptest.NewRequest(http.MethodGet, "/kitchen-1", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, payload, w.Body.String())
}

func TestPutSnapshot_RejectsNonArray(t *testing.T) {
	s, _ := newTestServer()

	tests := []struct {
		name string
		body string
	}{
		{"object", `{"id":"a"}`},
		{"string", `"items"`},
		{"garbage", `not json`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/kitchen-1", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPutSnapshot_RejectsInvalidCode(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/UPPER", strings.NewReader(`[]`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutSnapshot_PayloadTooLarge(t *testing.T) {
	repo := snapshots.NewMemoryRepository()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	s := NewServer(":0", repo, 16, logger)

	big := bytes.Repeat([]byte("1,"), 100)
	body := "[" + string(big) + "1]"
	req := httptest.NewRequest(http.MethodPost, "/kitchen-1", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPutSnapshot_EmptyArrayIsValid(t *testing.T) {
	s, repo := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/kitchen-1", strings.NewReader(`[]`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	stored, err := repo.Get(context.Background(), "kitchen-1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(stored))
}
