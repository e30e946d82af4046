package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "shopit-admin/internal/errors"
)

type mockSendUseCase struct {
	SendFunc func(ctx context.Context, target, orderID, status string) (json.RawMessage, error)
	calls    int
}

func (m *mockSendUseCase) Send(ctx context.Context, target, orderID, status string) (json.RawMessage, error) {
	m.calls++
	return m.SendFunc(ctx, target, orderID, status)
}

func postNotification(t *testing.T, ctrl *NotificationController, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/send-notification", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ctrl.HandleSendNotification(rec, req)
	return rec
}

func TestHandleSendNotification_Success(t *testing.T) {
	uc := &mockSendUseCase{
		SendFunc: func(ctx context.Context, target, orderID, status string) (json.RawMessage, error) {
			assert.Equal(t, "tok1", target)
			assert.Equal(t, "ord1", orderID)
			assert.Equal(t, "Delivered", status)
			return json.RawMessage(`{"name":"projects/demo/messages/1"}`), nil
		},
	}
	ctrl := NewNotificationController(uc, zap.NewNop())

	rec := postNotification(t, ctrl, `{"fcmToken":"tok1","orderId":"ord1","status":"Delivered"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message     string          `json:"message"`
		FCMResponse json.RawMessage `json:"fcmResponse"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Notification sent successfully", resp.Message)
	assert.JSONEq(t, `{"name":"projects/demo/messages/1"}`, string(resp.FCMResponse))
	assert.Equal(t, 1, uc.calls)
}

func TestHandleSendNotification_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no token", `{"orderId":"ord1","status":"Delivered"}`},
		{"no orderId", `{"fcmToken":"tok1","status":"Delivered"}`},
		{"no status", `{"fcmToken":"tok1","orderId":"ord1"}`},
		{"empty status", `{"fcmToken":"tok1","orderId":"ord1","status":""}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &mockSendUseCase{}
			ctrl := NewNotificationController(uc, zap.NewNop())

			rec := postNotification(t, ctrl, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Missing required fields: fcmToken, orderId, or status")
			// Validation failures never reach the network.
			assert.Equal(t, 0, uc.calls)
		})
	}
}

func TestHandleSendNotification_InvalidJSON(t *testing.T) {
	uc := &mockSendUseCase{}
	ctrl := NewNotificationController(uc, zap.NewNop())

	rec := postNotification(t, ctrl, `{"fcmToken":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, uc.calls)
}

func TestHandleSendNotification_DispatchFailure(t *testing.T) {
	uc := &mockSendUseCase{
		SendFunc: func(ctx context.Context, target, orderID, status string) (json.RawMessage, error) {
			return nil, apperrors.NewDispatchError("push provider rejected the message", 404, `{"error":"UNREGISTERED"}`)
		},
	}
	ctrl := NewNotificationController(uc, zap.NewNop())

	rec := postNotification(t, ctrl, `{"fcmToken":"stale","orderId":"ord1","status":"Delivered"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Error sending notification", resp.Error)
	assert.Contains(t, resp.Details, "UNREGISTERED")
}

func TestHandleSendNotification_AuthFailure(t *testing.T) {
	uc := &mockSendUseCase{
		SendFunc: func(ctx context.Context, target, orderID, status string) (json.RawMessage, error) {
			return nil, apperrors.NewAuthError("unable to fetch push access token")
		},
	}
	ctrl := NewNotificationController(uc, zap.NewNop())

	rec := postNotification(t, ctrl, `{"fcmToken":"tok1","orderId":"ord1","status":"Delivered"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error sending notification")
}
