package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"adminchat/models"
)

// HTTPChat - HTTP-транспорт чат-поверхности. Пользовательский вариант ходит
// на /api/v1/chat, админский - на /api/v1/admin/chats/<user_id> (та выборка
// как побочный эффект помечает сообщения пользователя прочитанными).
type HTTPChat struct {
	client       *http.Client
	baseURL      string
	callerID     int64
	targetUserID int64 // 0 - пользовательская поверхность
}

func NewUserChat(baseURL string, callerID int64) *HTTPChat {
	return &HTTPChat{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  baseURL,
		callerID: callerID,
	}
}

func NewAdminChat(baseURL string, adminID, userID int64) *HTTPChat {
	return &HTTPChat{
		client:       &http.Client{Timeout: 10 * time.Second},
		baseURL:      baseURL,
		callerID:     adminID,
		targetUserID: userID,
	}
}

func (hc *HTTPChat) fetchURL(sinceID int64) string {
	if hc.targetUserID > 0 {
		return fmt.Sprintf("%s/api/v1/admin/chats/%d/messages?since_id=%d", hc.baseURL, hc.targetUserID, sinceID)
	}
	return fmt.Sprintf("%s/api/v1/chat/messages?since_id=%d", hc.baseURL, sinceID)
}

func (hc *HTTPChat) sendURL() string {
	if hc.targetUserID > 0 {
		return fmt.Sprintf("%s/api/v1/admin/chats/%d/send", hc.baseURL, hc.targetUserID)
	}
	return fmt.Sprintf("%s/api/v1/chat/send", hc.baseURL)
}

func (hc *HTTPChat) Fetch(ctx context.Context, sinceID int64) ([]models.Message, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", hc.fetchURL(sinceID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-User-ID", fmt.Sprintf("%d", hc.callerID))

	resp, err := hc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload.Messages, nil
}

func (hc *HTTPChat) Send(ctx context.Context, body string) error {
	jsonData, err := json.Marshal(map[string]string{"message": body})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", hc.sendURL(), bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", fmt.Sprintf("%d", hc.callerID))

	resp, err := hc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
