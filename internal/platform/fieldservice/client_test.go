package fieldservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldops-reporting/internal/config"
	"github.com/fieldops-reporting/internal/domain/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.FieldServiceConfig{
		BaseURL:   server.URL,
		APIKey:    "secret",
		Timeout:   5 * time.Second,
		UserAgent: "fieldops-reporting-test",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&config.FieldServiceConfig{BaseURL: ""})
	require.Error(t, err)

	_, err = NewClient(&config.FieldServiceConfig{BaseURL: "not a url"})
	require.Error(t, err)

	client, err := NewClient(&config.FieldServiceConfig{BaseURL: "http://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", client.baseURL)
}

func TestQueryDispatches(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/dispatches", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		gotQuery = map[string]string{
			"page":     r.URL.Query().Get("page"),
			"pageSize": r.URL.Query().Get("pageSize"),
			"dateFrom": r.URL.Query().Get("dateFrom"),
			"dateTo":   r.URL.Query().Get("dateTo"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"d1","serviceOrderId":"42"}],"totalItems":1}`))
	}))

	window := dispatch.Window{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	}
	page, err := client.QueryDispatches(context.Background(), 2, 50, window)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"page":     "2",
		"pageSize": "50",
		"dateFrom": "2024-03-01",
		"dateTo":   "2024-03-07",
	}, gotQuery)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "d1", page.Items[0].ID)
	require.NotNil(t, page.TotalItems)
	assert.Equal(t, 1, *page.TotalItems)
}

func TestQueryDispatches_OmittedTotal(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))

	page, err := client.QueryDispatches(context.Background(), 1, 50, dispatch.Window{})
	require.NoError(t, err)
	assert.Nil(t, page.TotalItems)
}

func TestGetTimeEntriesAndExpenses(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dispatches/d1/time-entries":
			_, _ = w.Write([]byte(`[{"id":"t1","technicianId":"7","durationMinutes":60}]`))
		case "/api/dispatches/d1/expenses":
			_, _ = w.Write([]byte(`[{"id":"e1","userId":"7","amount":42.5}]`))
		default:
			http.NotFound(w, r)
		}
	}))

	timeEntries, err := client.GetTimeEntries(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, timeEntries, 1)
	assert.Equal(t, "7", timeEntries[0].TechnicianID)
	require.NotNil(t, timeEntries[0].DurationMinutes)
	assert.Equal(t, 60.0, *timeEntries[0].DurationMinutes)

	expenses, err := client.GetExpenses(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.NotNil(t, expenses[0].Amount)
	assert.Equal(t, 42.5, *expenses[0].Amount)
}

func TestListTechnicians(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/technicians", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"7","displayName":"Jane Doe"}]`))
	}))

	technicians, err := client.ListTechnicians(context.Background())
	require.NoError(t, err)
	require.Len(t, technicians, 1)
	assert.Equal(t, "Jane Doe", technicians[0].DisplayName)
}

func TestGet_ErrorStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := client.GetTimeEntries(context.Background(), "d1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "boom")
}
