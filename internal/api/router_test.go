package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todolistapi/backend/internal/database/models"
	"github.com/todolistapi/backend/internal/testutil"
)

func do(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testutil.SetupRouter(t, testutil.SetupTestDB(t))

	w := do(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

// TestFullUserJourney walks the whole API surface the way a client would:
// sign up, log in, manage a list, rotate credentials, log out.
func TestFullUserJourney(t *testing.T) {
	router, _ := testutil.SetupRouter(t, testutil.SetupTestDB(t))

	// Sign up
	w := do(t, router, http.MethodPost, "/register", "",
		map[string]any{"name": "Journey User", "email": "journey@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Log in for a token pair
	w = do(t, router, http.MethodPost, "/login", "",
		map[string]any{"email": "journey@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))

	// Create an item
	w = do(t, router, http.MethodPost, "/api/ToDoItems", tokens.AccessToken,
		map[string]any{"title": "Buy milk", "description": "2%"})
	require.Equal(t, http.StatusCreated, w.Code)

	var item models.ToDoItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	itemPath := fmt.Sprintf("/api/ToDoItems/%d", item.ID)
	assert.Equal(t, itemPath, w.Header().Get("Location"))

	// It shows up in the list
	w = do(t, router, http.MethodGet, "/api/ToDoItems?page=1&limit=10", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data  []models.ToDoItem `json:"data"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Buy milk", page.Data[0].Title)

	// Update it
	w = do(t, router, http.MethodPut, itemPath, tokens.AccessToken,
		map[string]any{"title": "Buy oat milk", "description": "barista blend"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, itemPath, tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "Buy oat milk", item.Title)

	// Rotate the refresh token; the new access token keeps working
	w = do(t, router, http.MethodPost, "/refresh-token", "",
		map[string]any{"refreshToken": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	oldRefreshToken := tokens.RefreshToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	assert.NotEqual(t, oldRefreshToken, tokens.RefreshToken)

	w = do(t, router, http.MethodGet, itemPath, tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Delete the item
	w = do(t, router, http.MethodDelete, itemPath, tokens.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, itemPath, tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Log out and confirm the refresh token is dead
	w = do(t, router, http.MethodPost, "/logout", "", tokens.RefreshToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/refresh-token", "",
		map[string]any{"refreshToken": tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
