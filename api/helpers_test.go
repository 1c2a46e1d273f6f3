package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"meal-admin/config"
	"meal-admin/db"
	"meal-admin/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type notification struct {
	kind  string
	id    int64
	count int64
}

// recordingNotifier captures notifications sent from background goroutines.
type recordingNotifier struct {
	mu   sync.Mutex
	got  []notification
	done chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) MenuFinalized(_ context.Context, menuID, completed int64) {
	n.record(notification{kind: "menu", id: menuID, count: completed})
}

func (n *recordingNotifier) PaymentRecorded(_ context.Context, userID int64, res *models.PaymentResult) {
	n.record(notification{kind: "payment", id: userID, count: int64(res.PaidCount)})
}

func (n *recordingNotifier) record(v notification) {
	n.mu.Lock()
	n.got = append(n.got, v)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *recordingNotifier) wait(t *testing.T) notification {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.got[len(n.got)-1]
}

func newTestServer(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(config.HTTPConfig{
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		LoginPerMinute: 3,
	}, opts)
	return s.Router()
}

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	prev := db.Pool
	db.SetTestDB(sqlx.NewDb(conn, "pgx"))
	t.Cleanup(func() {
		db.SetTestDB(prev)
		conn.Close()
	})
	return mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func tokenFor(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, _, err := issueToken(testSecret, &models.User{ID: userID, Role: role, EmployeeCode: "E1"}, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func doRequest(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
