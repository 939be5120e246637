package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

// Webhook posts markdown-formatted reports to a WeChat Work group
// robot webhook.
//
// The endpoint replies HTTP 200 even for application-level rejections,
// signalled by a non-zero errcode in the body, so both layers are
// checked. Delivery is single-shot: the snapshot a report came from is
// already committed by the time Notify runs, so a failed delivery is a
// dropped notification, never something to retry.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// WebhookOption configures a Webhook sink.
type WebhookOption func(*Webhook)

// WithTimeout sets the delivery timeout. Default: 10s.
func WithTimeout(d time.Duration) WebhookOption {
	return func(w *Webhook) { w.client.Timeout = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) WebhookOption {
	return func(w *Webhook) { w.logger = l }
}

// NewWebhook creates a sink targeting the given webhook URL.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

type markdownMessage struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Content string `json:"content"`
	} `json:"markdown"`
}

type webhookReply struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Notify formats and posts the report. An empty report is a no-op.
func (w *Webhook) Notify(ctx context.Context, report snapshot.ChangeSet) error {
	content := Format(report)
	if content == "" {
		return nil
	}
	msg := markdownMessage{MsgType: "markdown"}
	msg.Markdown.Content = content
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	var reply webhookReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&reply); err != nil {
		return fmt.Errorf("notify: decode reply: %w", err)
	}
	if reply.ErrCode != 0 {
		return fmt.Errorf("notify: webhook rejected: errcode %d: %s", reply.ErrCode, reply.ErrMsg)
	}
	w.logger.Info("notify: notification sent", "entries", report.Count())
	return nil
}

func (w *Webhook) Close() error { return nil }
