package notification

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRoutes(t *testing.T) {
	api := testhelper.NewTestAPI()
	svc, _ := newTestService(t)
	NewHandler(svc, api.Response).RegisterRoutes(api.API, api.RequireUser)

	user := uuid.New()
	n := New(user, TypeEvent, "Registration confirmed", "", nil)
	require.NoError(t, svc.Append(context.Background(), n))

	w, _ := api.Do(t, http.MethodGet, "/api/v1/notifications", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := api.Do(t, http.MethodGet, "/api/v1/notifications/unread-count", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unread UnreadCount
	testhelper.DecodeData(t, resp, &unread)
	assert.Equal(t, int64(1), unread.Count)

	w, _ = api.Do(t, http.MethodPost, "/api/v1/notifications/"+n.ID.String()+"/read", uuid.New(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.Do(t, http.MethodPost, "/api/v1/notifications/not-a-uuid/read", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.Do(t, http.MethodPost, "/api/v1/notifications/"+n.ID.String()+"/read", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = api.Do(t, http.MethodGet, "/api/v1/notifications?limit=5", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Notifications []Notification `json:"notifications"`
	}
	testhelper.DecodeData(t, resp, &page)
	require.Len(t, page.Notifications, 1)
	assert.True(t, page.Notifications[0].Read)

	w, _ = api.Do(t, http.MethodGet, "/api/v1/notifications?limit=abc", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.Do(t, http.MethodPost, "/api/v1/notifications/read-all", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
