// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aimd54/design-contest/internal/config"
	"github.com/aimd54/design-contest/pkg/logger"
)

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback   string  `json:"fallback,omitempty"`
	Color      string  `json:"color,omitempty"`
	Pretext    string  `json:"pretext,omitempty"`
	AuthorName string  `json:"author_name,omitempty"`
	AuthorLink string  `json:"author_link,omitempty"`
	AuthorIcon string  `json:"author_icon,omitempty"`
	Title      string  `json:"title,omitempty"`
	TitleLink  string  `json:"title_link,omitempty"`
	Text       string  `json:"text,omitempty"`
	Fields     []Field `json:"fields,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	ThumbURL   string  `json:"thumb_url,omitempty"`
	Footer     string  `json:"footer,omitempty"`
	FooterIcon string  `json:"footer_icon,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// Phase notification statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// PhaseEvent describes one orchestrator phase run.
type PhaseEvent struct {
	Phase    string // "assignment" or "scoring"
	Status   string
	Count    int
	Duration time.Duration
	Err      error
}

// SendPhaseTransition announces a completed or failed phase run.
func (c *Client) SendPhaseTransition(ev PhaseEvent) error {
	if !c.enabled {
		return nil
	}

	color := "#2eb886"
	title := fmt.Sprintf("Contest %s %s", ev.Phase, ev.Status)
	text := fmt.Sprintf("%s run %s in %s", ev.Phase, ev.Status, ev.Duration.Round(time.Millisecond))
	fields := []Field{
		{Short: true, Title: "Phase", Value: ev.Phase},
		{Short: true, Title: "Rows written", Value: fmt.Sprintf("%d", ev.Count)},
	}
	if ev.Status == StatusFailed {
		color = "#a30200"
		if ev.Err != nil {
			fields = append(fields, Field{Title: "Error", Value: ev.Err.Error()})
		}
	}

	return c.SendMessage(&Message{
		Username: "Design Contest",
		Attachments: []Attachment{{
			Fallback: title,
			Color:    color,
			Title:    title,
			Text:     text,
			Fields:   fields,
		}},
	})
}
