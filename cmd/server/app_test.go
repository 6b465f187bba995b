package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskchime/taskchime/internal/config"
	"github.com/taskchime/taskchime/internal/domain"
	"github.com/taskchime/taskchime/internal/notify"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           0,
			LogLevel:       "error",
			AllowedOrigins: []string{"*"},
		},
		Database: config.DatabaseConfig{
			Path:              ":memory:",
			BusyTimeoutMillis: 1000,
		},
		Notify: config.NotifyConfig{
			QueueSize:        16,
			SubscriberBuffer: 4,
		},
	}
}

func newTestApp(t *testing.T) (*application, *httptest.Server) {
	t.Helper()

	app, err := newApplication(testConfig(), slog.Default())
	require.NoError(t, err)
	app.start()
	t.Cleanup(app.cleanup)

	server := httptest.NewServer(app.setupRouter())
	t.Cleanup(server.Close)

	return app, server
}

func postTask(t *testing.T, server *httptest.Server, body map[string]string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/tasks", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func listTasks(t *testing.T, server *httptest.Server) []map[string]any {
	t.Helper()

	resp, err := http.Get(server.URL + "/tasks")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	return tasks
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	_, server := newTestApp(t)

	// Create
	resp := postTask(t, server, map[string]string{
		"title":      "Pay bill",
		"due_date":   "2027-01-01",
		"time":       "09:00",
		"recurrence": "none",
	})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tasks := listTasks(t, server)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay bill", tasks[0]["title"])
	assert.Equal(t, string(domain.TaskStatusPending), tasks[0]["status"])
	id := int64(tasks[0]["id"].(float64))

	// Update
	updateBody, _ := json.Marshal(map[string]string{
		"title":      "Pay electricity bill",
		"due_date":   "2027-02-01",
		"time":       "10:00",
		"recurrence": "monthly",
	})
	req, err := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/tasks/%d", server.URL, id), bytes.NewReader(updateBody))
	require.NoError(t, err)
	updateResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = updateResp.Body.Close()
	require.Equal(t, http.StatusOK, updateResp.StatusCode)

	tasks = listTasks(t, server)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay electricity bill", tasks[0]["title"])
	assert.Equal(t, "10:00", tasks[0]["time"])

	// Complete
	req, err = http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/tasks/%d/complete", server.URL, id), nil)
	require.NoError(t, err)
	completeResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = completeResp.Body.Close()
	require.Equal(t, http.StatusOK, completeResp.StatusCode)

	tasks = listTasks(t, server)
	assert.Equal(t, string(domain.TaskStatusCompleted), tasks[0]["status"])

	// Delete
	req, err = http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/tasks/%d", server.URL, id), nil)
	require.NoError(t, err)
	deleteResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = deleteResp.Body.Close()
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	assert.Empty(t, listTasks(t, server))
}

func TestCreateRejectsMissingFieldOverHTTP(t *testing.T) {
	_, server := newTestApp(t)

	resp := postTask(t, server, map[string]string{
		"due_date":   "2027-01-01",
		"time":       "09:00",
		"recurrence": "none",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, listTasks(t, server))
}

func TestUpdateMissingTaskReturns404(t *testing.T) {
	_, server := newTestApp(t)

	body, _ := json.Marshal(map[string]string{
		"title":      "Ghost",
		"due_date":   "2027-01-01",
		"time":       "09:00",
		"recurrence": "none",
	})
	req, err := http.NewRequest(http.MethodPut, server.URL+"/tasks/42", bytes.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReminderReachesWebsocketSubscriber(t *testing.T) {
	_, server := newTestApp(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	time.Sleep(50 * time.Millisecond)

	// A past due instant fires as soon as the task is created.
	past := time.Now().Add(-time.Minute)
	createResp := postTask(t, server, map[string]string{
		"title":      "Overdue",
		"due_date":   past.Format(domain.DueDateLayout),
		"time":       past.Format(domain.TimeOfDayLayout),
		"recurrence": "none",
	})
	_ = createResp.Body.Close()
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event notify.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, notify.EventTypeTaskReminder, event.Type)

	var payload notify.ReminderPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "Overdue", payload.Title)
}

func TestHealthEndpoint(t *testing.T) {
	_, server := newTestApp(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
