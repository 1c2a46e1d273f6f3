package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-admin/config"
	"meal-admin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmployees(t *testing.T) {
	body := []byte(`{"data":{"staff":[
		{"emp_no": 1001, "display": " Ana Lopez "},
		{"emp_no": "", "display": "no code"},
		{"display": "missing"},
		{"emp_no": "1002", "display": "Ben Ito"},
		{"emp_no": 1001, "display": "Ana López"}
	]}}`)

	got, err := ParseEmployees(body, "data.staff", "emp_no", "display")
	require.NoError(t, err)
	assert.Equal(t, []models.Employee{
		{Code: "1001", Name: "Ana López"},
		{Code: "1002", Name: "Ben Ito"},
	}, got)
}

func TestParseEmployeesRootArrayDefaults(t *testing.T) {
	got, err := ParseEmployees([]byte(`[{"code":"E1","name":"Eve"}]`), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, []models.Employee{{Code: "E1", Name: "Eve"}}, got)
}

func TestParseEmployeesErrors(t *testing.T) {
	_, err := ParseEmployees([]byte(`not json`), "", "code", "name")
	assert.Error(t, err)

	_, err = ParseEmployees([]byte(`{"items":{}}`), "items", "code", "name")
	assert.Error(t, err)
}

func TestClientFetchEmployees(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"code":"A1","name":"Alice"}]}`))
	}))
	defer srv.Close()

	cfg := config.DirectoryConfig{URL: srv.URL, Token: "secret", ItemsPath: "items", CodeField: "code", NameField: "name", Timeout: time.Second}
	got, err := NewClient(cfg).FetchEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Employee{{Code: "A1", Name: "Alice"}}, got)

	cfg.Token = "wrong"
	_, err = NewClient(cfg).FetchEmployees(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClientRequiresURL(t *testing.T) {
	_, err := NewClient(config.DirectoryConfig{}).FetchEmployees(context.Background())
	assert.Error(t, err)
}
