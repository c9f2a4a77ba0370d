package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// ResendNotifier delivers reaction notifications through the Resend email
// API. A zero-config notifier reports missing-email-config instead of
// erroring.
type ResendNotifier struct {
	APIKey    string
	FromEmail string
	Endpoint  string
	Client    *http.Client
}

// NewResendNotifier builds a notifier; apiKey or fromEmail may be empty, in
// which case every attempt reports sent=false without touching the network.
func NewResendNotifier(apiKey, fromEmail string) *ResendNotifier {
	return &ResendNotifier{
		APIKey:    strings.TrimSpace(apiKey),
		FromEmail: strings.TrimSpace(fromEmail),
		Endpoint:  defaultResendEndpoint,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

// Notify posts the email. Transport-level failures and non-2xx statuses are
// reported as not-sent outcomes with a reason code.
func (n *ResendNotifier) Notify(ctx context.Context, ev ReactionEvent) Outcome {
	if n.APIKey == "" || n.FromEmail == "" {
		return Outcome{Sent: false, Reason: "missing-email-config"}
	}

	subject := fmt.Sprintf("%s reacted %s", ev.RecipientName, ev.Emoji)
	text := strings.Join([]string{
		"Hi " + ev.SenderName + ",",
		"",
		fmt.Sprintf("%s reacted %s to your TinyKind.", ev.RecipientName, ev.Emoji),
		"View it: " + ev.MessageURL,
		"",
		"— tinykind",
	}, "\n")
	html := strings.Join([]string{
		"<p>Hi " + escapeHTML(ev.SenderName) + ",</p>",
		"<p><strong>" + escapeHTML(ev.RecipientName) + "</strong> reacted " + escapeHTML(ev.Emoji) + " to your TinyKind.</p>",
		`<p><a href="` + escapeHTML(ev.MessageURL) + `">View TinyKind</a></p>`,
		"<p>— tinykind</p>",
	}, "")

	body, err := json.Marshal(resendPayload{
		From:    n.FromEmail,
		To:      []string{ev.ToEmail},
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
	if err != nil {
		return Outcome{Sent: false, Reason: "encode-payload: " + err.Error()}
	}

	endpoint := n.Endpoint
	if endpoint == "" {
		endpoint = defaultResendEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{Sent: false, Reason: "build-request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+n.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		logger.Log.Warn("notify_transport_failed", zap.Error(err))
		return Outcome{Sent: false, Reason: "transport: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		compact := compactSpace.ReplaceAllString(strings.TrimSpace(string(details)), " ")
		if len(compact) > 240 {
			compact = compact[:240]
		}
		reason := fmt.Sprintf("resend-%d", resp.StatusCode)
		if compact != "" {
			reason += ": " + compact
		}
		logger.Log.Warn("notify_rejected", zap.Int("status", resp.StatusCode))
		return Outcome{Sent: false, Reason: reason}
	}
	return Outcome{Sent: true}
}

var compactSpace = regexp.MustCompile(`\s+`)

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string { return htmlReplacer.Replace(s) }
