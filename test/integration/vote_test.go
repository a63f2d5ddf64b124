package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgrepo "github.com/showtally/api/internal/adapters/repository/postgres"
	"github.com/showtally/api/internal/core/domain"
)

func createSession(t *testing.T, app *TestApp, code string, options ...string) *domain.Session {
	t.Helper()

	payload := map[string]interface{}{
		"code":    code,
		"title":   "Voting Round",
		"options": options,
	}
	body, _ := json.Marshal(payload)

	resp, err := app.Client.Post(app.Server.URL+"/api/sessions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session domain.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return &session
}

func castVote(t *testing.T, app *TestApp, code string, optionID uuid.UUID, deviceID string) *http.Response {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{"option_id": optionID})
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/sessions/%s/votes", app.Server.URL, code), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", deviceID)

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

func closeSession(t *testing.T, app *TestApp, code string) {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{"is_open": false})
	req, err := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/api/sessions/%s", app.Server.URL, code), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func countVotes(t *testing.T, app *TestApp, sessionID uuid.UUID, deviceID string) int {
	t.Helper()

	var count int
	err := app.DB.QueryRow(
		"SELECT COUNT(*) FROM votes WHERE session_id=$1 AND device_id=$2", sessionID, deviceID).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestVoteSwitching(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	session := createSession(t, app, "ABCD", "Red", "Blue")
	red, blue := session.Options[0].ID, session.Options[1].ID

	// First cast.
	resp := castVote(t, app, "ABCD", red, "D1")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, countVotes(t, app, session.ID, "D1"))

	// Re-casting the same option is fine and still leaves one row.
	resp = castVote(t, app, "ABCD", red, "D1")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, countVotes(t, app, session.ID, "D1"))

	// Switching replaces the row rather than adding one.
	resp = castVote(t, app, "ABCD", blue, "D1")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, countVotes(t, app, session.ID, "D1"))

	var optionID uuid.UUID
	err := app.DB.QueryRow(
		"SELECT option_id FROM votes WHERE session_id=$1 AND device_id=$2", session.ID, "D1").Scan(&optionID)
	require.NoError(t, err)
	assert.Equal(t, blue, optionID)
}

func TestTallyCountsDistinctDevices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	session := createSession(t, app, "ABCD", "Red", "Blue")
	red, blue := session.Options[0].ID, session.Options[1].ID

	for _, cast := range []struct {
		device string
		option uuid.UUID
	}{
		{"D1", red},
		{"D2", blue},
		{"D1", red}, // re-cast, must not double-count
	} {
		resp := castVote(t, app, "ABCD", cast.option, cast.device)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Client.Get(app.Server.URL + "/api/sessions/ABCD/tally")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Counts      map[uuid.UUID]int `json:"counts"`
		Total       int               `json:"total"`
		Percentages map[uuid.UUID]int `json:"percentages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	assert.Equal(t, 2, payload.Total)
	assert.Equal(t, 1, payload.Counts[red])
	assert.Equal(t, 1, payload.Counts[blue])
	assert.Equal(t, 50, payload.Percentages[red])
	assert.Equal(t, 50, payload.Percentages[blue])
}

func TestClosedSessionRejectsVotes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	session := createSession(t, app, "SHUT", "Red", "Blue")
	red := session.Options[0].ID

	resp := castVote(t, app, "SHUT", red, "D1")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	closeSession(t, app, "SHUT")

	resp = castVote(t, app, "SHUT", red, "D3")
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Prior tally is untouched.
	var total int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE session_id=$1", session.ID).Scan(&total)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestMyVoteRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	session := createSession(t, app, "ABCD", "Red", "Blue")
	red := session.Options[0].ID

	req, err := http.NewRequest(http.MethodGet, app.Server.URL+"/api/sessions/ABCD/votes/mine", nil)
	require.NoError(t, err)
	req.Header.Set("X-Device-ID", "D1")
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	cast := castVote(t, app, "ABCD", red, "D1")
	cast.Body.Close()
	require.Equal(t, http.StatusCreated, cast.StatusCode)

	resp, err = app.Client.Do(req.Clone(req.Context()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var myVote map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&myVote))
	assert.Equal(t, red.String(), myVote["option_id"])
}

func TestReplaceVoteKeepsSingleRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	session := createSession(t, app, "ABCD", "Red", "Blue")
	red := session.Options[0].ID
	blue := session.Options[1].ID

	repo := pgrepo.NewVoteRepository(app.DB)
	ctx := context.Background()

	require.NoError(t, repo.InsertVote(ctx, &domain.VoteEvent{
		SessionID: session.ID, OptionID: red, DeviceID: "D1",
	}))

	require.NoError(t, repo.ReplaceVote(ctx, &domain.VoteEvent{
		SessionID: session.ID, OptionID: blue, DeviceID: "D1",
	}))

	assert.Equal(t, 1, countVotes(t, app, session.ID, "D1"))

	var optionID uuid.UUID
	err := app.DB.QueryRow(
		"SELECT option_id FROM votes WHERE session_id=$1 AND device_id=$2",
		session.ID, "D1").Scan(&optionID)
	require.NoError(t, err)
	assert.Equal(t, blue, optionID)

	// A device with no prior vote goes through the same path cleanly.
	require.NoError(t, repo.ReplaceVote(ctx, &domain.VoteEvent{
		SessionID: session.ID, OptionID: red, DeviceID: "D2",
	}))
	assert.Equal(t, 1, countVotes(t, app, session.ID, "D2"))
}
