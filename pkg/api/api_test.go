package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alferrante/tinykind/internal/backup"
	"github.com/alferrante/tinykind/pkg/api"
	"github.com/alferrante/tinykind/pkg/notify"
	"github.com/alferrante/tinykind/pkg/store"
)

type captureNotifier struct {
	events []notify.ReactionEvent
	out    notify.Outcome
}

func (c *captureNotifier) Notify(_ context.Context, ev notify.ReactionEvent) notify.Outcome {
	c.events = append(c.events, ev)
	return c.out
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	notifier *captureNotifier
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	dataDir := t.TempDir()
	require.NoError(t, store.Open(dataDir))
	t.Cleanup(func() { _ = store.Close() })

	n := &captureNotifier{out: notify.Outcome{Sent: true}}
	mgr := backup.New(backup.Options{
		Dir:     filepath.Join(dataDir, "backups"),
		Enabled: true, MaxCount: 5,
	})

	srv := httptest.NewServer(api.Handler(api.Deps{
		Notifier:   n,
		Backups:    mgr,
		AdminToken: "sekrit",
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}, notifier: n}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := e.client.Do(req)
	require.NoError(t, err)
	return res, decodeBody(t, res)
}

func (e *testEnv) get(t *testing.T, path string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := e.client.Do(req)
	require.NoError(t, err)
	return res, decodeBody(t, res)
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestFullFlow_CreateShareReact(t *testing.T) {
	env := setupServer(t)

	// Ana writes a note for Bo and asks to be notified
	res, created := env.postJSON(t, "/v1/messages", map[string]any{
		"senderName":        "Ana",
		"senderNotifyEmail": "ana@example.com",
		"recipientName":     "Bo",
		"recipientContact":  "bo@example.com",
		"body":              "thank you for the soup",
	}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	msg := created["message"].(map[string]any)
	slug := msg["shortLinkSlug"].(string)
	require.NotEmpty(t, slug)
	require.Equal(t, "sent", msg["status"])
	require.Contains(t, created["messageUrl"].(string), "/t/"+slug)
	require.Equal(t, "bo@example.com", created["recipientEmail"])
	require.Contains(t, created["gmailComposeUrl"].(string), "mail.google.com")
	require.Contains(t, created["emailSubject"].(string), "Ana")

	// Bo opens the share link
	res, opened := env.get(t, "/v1/t/"+slug, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "thank you for the soup", opened["message"].(map[string]any)["body"])
	require.Nil(t, opened["latestReaction"])

	// Bo reacts; first reaction notifies Ana
	res, reacted := env.postJSON(t, "/v1/reactions", map[string]any{"slug": slug, "emoji": "💛"}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, true, reacted["changed"])
	notif := reacted["notification"].(map[string]any)
	require.Equal(t, true, notif["attempted"])
	require.Equal(t, true, notif["sent"])
	require.Len(t, env.notifier.events, 1)
	require.Equal(t, "ana@example.com", env.notifier.events[0].ToEmail)
	require.Equal(t, "💛", env.notifier.events[0].Emoji)

	// the same device repeating the same emoji changes nothing and stays quiet
	res, repeated := env.postJSON(t, "/v1/reactions", map[string]any{"slug": slug, "emoji": "💛"}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, false, repeated["changed"])
	require.Equal(t, false, repeated["notification"].(map[string]any)["attempted"])
	require.Len(t, env.notifier.events, 1)

	// switching emoji notifies again
	_, switched := env.postJSON(t, "/v1/reactions", map[string]any{"slug": slug, "emoji": "🥹"}, nil)
	require.Equal(t, true, switched["changed"])
	require.Len(t, env.notifier.events, 2)

	// still one reaction row: the cookie identified the same device
	_, opened = env.get(t, "/v1/t/"+slug, nil)
	require.Equal(t, "🥹", opened["latestReaction"].(map[string]any)["emoji"])
}

func TestReactions_UnconfiguredNotifierReportsOutcome(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, store.Open(dataDir))
	t.Cleanup(func() { _ = store.Close() })

	// wired the way the app does it when no Resend key is configured
	srv := httptest.NewServer(api.Handler(api.Deps{
		Notifier: notify.NewResendNotifier("", ""),
		Backups:  backup.New(backup.Options{Dir: filepath.Join(dataDir, "backups")}),
	}))
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	env := &testEnv{srv: srv, client: &http.Client{Jar: jar}}

	_, created := env.postJSON(t, "/v1/messages", map[string]any{
		"senderName":        "Ana",
		"senderNotifyEmail": "ana@example.com",
		"recipientName":     "Bo",
		"recipientContact":  "bo@example.com",
		"body":              "thank you",
	}, nil)
	slug := created["message"].(map[string]any)["shortLinkSlug"].(string)

	res, reacted := env.postJSON(t, "/v1/reactions", map[string]any{"slug": slug, "emoji": "💛"}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, true, reacted["changed"])

	// dispatch still happens; the missing config surfaces as a structured
	// not-sent outcome rather than a silent skip
	notif := reacted["notification"].(map[string]any)
	require.Equal(t, true, notif["attempted"])
	require.Equal(t, false, notif["sent"])
	require.Equal(t, "missing-email-config", notif["reason"])
}

func TestReactions_Rejections(t *testing.T) {
	env := setupServer(t)

	res, body := env.postJSON(t, "/v1/reactions", map[string]any{"slug": "", "emoji": ""}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "slug and emoji are required", body["error"])

	_, created := env.postJSON(t, "/v1/messages", map[string]any{
		"senderName": "Ana", "recipientName": "Bo",
		"recipientContact": "bo@example.com", "body": "hi",
	}, nil)
	slug := created["message"].(map[string]any)["shortLinkSlug"].(string)

	res, body = env.postJSON(t, "/v1/reactions", map[string]any{"slug": slug, "emoji": "🔥"}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "unsupported emoji", body["error"])

	res, _ = env.postJSON(t, "/v1/reactions", map[string]any{"slug": "nosuch", "emoji": "💛"}, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCreateMessage_ValidationStatus(t *testing.T) {
	env := setupServer(t)

	res, body := env.postJSON(t, "/v1/messages", map[string]any{
		"senderName": "Ana", "recipientName": "Bo", "recipientContact": "x",
	}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Contains(t, body["error"], "body")
}

func TestAdmin_TokenGate(t *testing.T) {
	env := setupServer(t)

	// no token: the surface hides as 404
	res, body := env.get(t, "/v1/admin/messages", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, "not found", body["error"])

	// wrong token: same shape
	res, _ = env.get(t, "/v1/admin/messages", map[string]string{"X-Tinykind-Admin-Token": "wrong"})
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	// right token
	res, body = env.get(t, "/v1/admin/messages", map[string]string{"X-Tinykind-Admin-Token": "sekrit"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotNil(t, body["messages"])
}

func TestAdmin_DeleteAndBackup(t *testing.T) {
	env := setupServer(t)
	admin := map[string]string{"X-Tinykind-Admin-Token": "sekrit"}

	_, created := env.postJSON(t, "/v1/messages", map[string]any{
		"senderName": "Ana", "recipientName": "Bo",
		"recipientContact": "bo@example.com", "body": "hi",
	}, nil)
	msg := created["message"].(map[string]any)
	id := msg["id"].(string)
	slug := msg["shortLinkSlug"].(string)

	res, body := env.get(t, "/v1/admin/messages/"+id, admin)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, id, body["message"].(map[string]any)["id"])

	req, err := http.NewRequest(http.MethodDelete, env.srv.URL+"/v1/admin/messages/"+id, nil)
	require.NoError(t, err)
	req.Header.Set("X-Tinykind-Admin-Token", "sekrit")
	dres, err := env.client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, dres.StatusCode)
	require.Equal(t, true, decodeBody(t, dres)["deleted"])

	// share link is gone for the public
	res, _ = env.get(t, "/v1/t/"+slug, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	// second delete is a 404
	req2, _ := http.NewRequest(http.MethodDelete, env.srv.URL+"/v1/admin/messages/"+id, nil)
	req2.Header.Set("X-Tinykind-Admin-Token", "sekrit")
	dres2, err := env.client.Do(req2)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, dres2.StatusCode)
	dres2.Body.Close()

	// manual snapshot and diagnostics
	res, body = env.postJSON(t, "/v1/admin/backup", map[string]any{}, admin)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.NotEmpty(t, body["path"])

	res, body = env.get(t, "/v1/admin/storage", admin)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, body["dataFileExists"])
	require.GreaterOrEqual(t, body["snapshotCount"].(float64), float64(1))
}
