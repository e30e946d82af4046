package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	apperrors "shopit-admin/internal/errors"
)

// Capabilities are the delivery-platform flags the payload builder is
// parameterized by, so the plain and the device-styled payload shapes come
// out of the same function.
type Capabilities struct {
	// ImageURL, when set, is attached to the notification block.
	ImageURL string
	// AndroidStyling adds the android block with click action, accent color
	// and high priority.
	AndroidStyling bool
}

type Message struct {
	Message MessageBody `json:"message"`
}

type MessageBody struct {
	Token        string            `json:"token"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data"`
	Android      *AndroidConfig    `json:"android,omitempty"`
}

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

type AndroidConfig struct {
	Notification AndroidNotification `json:"notification"`
	Priority     string              `json:"priority"`
}

type AndroidNotification struct {
	ClickAction string `json:"clickAction"`
	Color       string `json:"color"`
}

// BuildMessage is pure: same inputs, same payload.
func BuildMessage(target, orderID, status string, caps Capabilities) Message {
	msg := Message{
		Message: MessageBody{
			Token: target,
			Notification: Notification{
				Title: fmt.Sprintf("Update on Order #%s", orderID),
				Body:  fmt.Sprintf("Your order is %s.", status),
				Image: caps.ImageURL,
			},
			Data: map[string]string{
				"orderId": orderID,
				"status":  status,
			},
		},
	}

	if caps.AndroidStyling {
		msg.Message.Android = &AndroidConfig{
			Notification: AndroidNotification{
				ClickAction: "OPEN_ORDER_DETAILS",
				Color:       "#FF6F00",
			},
			Priority: "high",
		}
	}

	return msg
}

// FCMService submits one push message per call. No retries: the caller
// decides whether to re-invoke.
type FCMService struct {
	endpoint   string
	caps       Capabilities
	httpClient *http.Client
	logger     *zap.Logger
}

func NewFCMService(endpoint string, caps Capabilities, httpClient *http.Client, logger *zap.Logger) *FCMService {
	return &FCMService{
		endpoint:   endpoint,
		caps:       caps,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (s *FCMService) Send(ctx context.Context, accessToken, target, orderID, status string) (json.RawMessage, error) {
	payload, err := json.Marshal(BuildMessage(target, orderID, status, s.caps))
	if err != nil {
		return nil, fmt.Errorf("marshaling push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewDispatchError(fmt.Sprintf("push submission failed: %v", err), 0, "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewDispatchError(fmt.Sprintf("reading provider response: %v", err), resp.StatusCode, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("push provider rejected message",
			zap.String("orderId", orderID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, apperrors.NewDispatchError("push provider rejected the message", resp.StatusCode, string(body))
	}

	return json.RawMessage(body), nil
}
