// Package notify sends the optional review-needed webhook message when
// an article lands in the pending queue. Delivery is fire and forget.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"satirewire/internal/logger"
)

// Notifier posts review notifications to a webhook. An empty webhook
// URL disables it entirely.
type Notifier struct {
	webhookURL   string
	dashboardURL string
	client       *http.Client
}

// New builds a Notifier.
func New(webhookURL, dashboardURL string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Notifier{
		webhookURL:   webhookURL,
		dashboardURL: dashboardURL,
		client:       &http.Client{Timeout: timeout},
	}
}

// ReviewNeeded announces a newly queued item. Failures are logged and
// swallowed; notification must never affect the pipeline outcome.
func (n *Notifier) ReviewNeeded(ctx context.Context, title string, score int, reason string) {
	if n == nil || n.webhookURL == "" {
		return
	}

	parts := []string{"Nieuw item voor review:"}
	if title != "" {
		parts = append(parts, fmt.Sprintf("%q", title))
	} else {
		parts = append(parts, "(zonder titel)")
	}
	parts = append(parts, fmt.Sprintf("(score %d)", score))
	if reason != "" {
		parts = append(parts, "— "+reason)
	}
	if n.dashboardURL != "" {
		parts = append(parts, "→ "+n.dashboardURL)
	}

	payload, err := json.Marshal(map[string]string{"text": strings.Join(parts, " ")})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		logger.Warn("Failed to build review notification", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Warn("Failed to deliver review notification", "error", err)
		return
	}
	_ = resp.Body.Close()
}
