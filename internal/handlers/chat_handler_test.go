package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/services"
)

func newChatApp(svc *mockChatService) *fiber.App {
	handler := NewChatHandler(svc)
	app := fiber.New()
	app.Post("/chat", handler.HandleChat)
	app.Post("/chat/reset", handler.HandleReset)
	return app
}

func TestHandleChat(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "Reply", wantStatus: http.StatusOK},
		{name: "Empty message", serviceErr: services.ErrEmptyMessage, wantStatus: http.StatusBadRequest},
		{name: "Model unavailable", serviceErr: fmt.Errorf("failed to generate reply: %w", services.ErrService), wantStatus: http.StatusBadGateway},
		{name: "Storage failure", serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockChatService)
			svc.On("Send", mock.Anything, "alice", "How do I prepare?").Return("Practice.", tt.serviceErr)

			resp, err := newChatApp(svc).Test(jsonRequest(t, http.MethodPost, "/chat", models.ChatRequest{UserID: "alice", Message: "How do I prepare?"}), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.serviceErr == nil {
				var body models.ChatResponse
				decodeBody(t, resp, &body)
				assert.Equal(t, "Practice.", body.Reply)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleChat_InvalidBody(t *testing.T) {
	svc := new(mockChatService)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := newChatApp(svc).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleReset(t *testing.T) {
	svc := new(mockChatService)
	svc.On("Reset", mock.Anything, "alice").Return(nil).Once()
	svc.On("Reset", mock.Anything, "").Return(nil).Once()
	app := newChatApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/chat/reset", models.ResetRequest{UserID: "alice"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/chat/reset", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.AssertExpectations(t)
}
