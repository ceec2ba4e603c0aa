package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NtfyClient sends notifications to an ntfy server.
type NtfyClient struct {
	server string
	topic  string
	client *http.Client
}

// NewNtfyClient creates a client for the given server and topic.
func NewNtfyClient(server, topic string) *NtfyClient {
	return &NtfyClient{
		server: strings.TrimSuffix(server, "/"),
		topic:  topic,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send implements Notifier by POSTing the notification as JSON.
func (c *NtfyClient) Send(n Notification) error {
	payload := map[string]string{
		"topic":   c.topic,
		"title":   n.Title,
		"message": n.Message,
	}
	if n.Reason != "" {
		payload["tags"] = n.Reason
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	resp, err := c.client.Post(c.server+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
