package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/alferrante/tinykind/pkg/models"
	"github.com/alferrante/tinykind/pkg/store"
	"github.com/alferrante/tinykind/pkg/telemetry"
	"github.com/alferrante/tinykind/pkg/utils"
	"github.com/alferrante/tinykind/pkg/validation"
)

type createMessageRequest struct {
	SenderName           string  `json:"senderName"`
	SenderNotifyEmail    string  `json:"senderNotifyEmail"`
	RecipientName        string  `json:"recipientName"`
	RecipientContact     string  `json:"recipientContact"`
	Body                 string  `json:"body"`
	Channel              string  `json:"channel"`
	UnwrapStyle          string  `json:"unwrapStyle"`
	RawText              string  `json:"rawText"`
	VoiceURL             string  `json:"voiceUrl"`
	VoiceDurationSeconds float64 `json:"voiceDurationSeconds"`
	TranscriptRaw        string  `json:"transcriptRaw"`
	TranscriptCleaned    string  `json:"transcriptCleaned"`
}

type createMessageResponse struct {
	Message         *models.Message `json:"message"`
	MessageURL      string          `json:"messageUrl"`
	RecipientEmail  string          `json:"recipientEmail,omitempty"`
	GmailComposeURL string          `json:"gmailComposeUrl"`
	EmailSubject    string          `json:"emailSubject"`
	EmailBody       string          `json:"emailBody"`
	SharePreview    string          `json:"sharePreview"`
}

func createMessage(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	msg, err := store.CreateMessage(store.CreateMessageInput{
		SenderName:           req.SenderName,
		SenderNotifyEmail:    req.SenderNotifyEmail,
		RecipientName:        req.RecipientName,
		RecipientContact:     req.RecipientContact,
		Body:                 req.Body,
		Channel:              models.Channel(req.Channel),
		UnwrapStyle:          req.UnwrapStyle,
		RawText:              req.RawText,
		VoiceURL:             req.VoiceURL,
		VoiceDurationSeconds: req.VoiceDurationSeconds,
		TranscriptRaw:        req.TranscriptRaw,
		TranscriptCleaned:    req.TranscriptCleaned,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	telemetry.MessagesCreated.Inc()

	messageURL := baseURL(r) + "/t/" + msg.ShortLinkSlug
	subject, body, preview := buildShareEmail(msg.SenderName, msg.RecipientName, msg.Body, messageURL)
	recipientEmail := ""
	if validation.LooksLikeEmail(msg.RecipientContact) {
		recipientEmail = msg.RecipientContact
	}

	_ = utils.JSONWrite(w, http.StatusCreated, createMessageResponse{
		Message:         msg,
		MessageURL:      messageURL,
		RecipientEmail:  recipientEmail,
		GmailComposeURL: gmailComposeURL(recipientEmail, subject, body),
		EmailSubject:    subject,
		EmailBody:       body,
		SharePreview:    preview,
	})
}

func getMessageBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	res, err := store.GetMessageWithLatestReactionBySlug(slug)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, res)
}

// buildShareEmail drafts the email a sender can forward along with the
// share link.
func buildShareEmail(senderName, recipientName, noteBody, messageURL string) (subject, body, preview string) {
	subject = "A TinyKind from " + senderName
	body = "Hi " + recipientName + ",\n\n" +
		noteBody + "\n\n" +
		"Open your TinyKind: " + messageURL + "\n\n" +
		"Made with tinykind"
	preview = noteBody + "\n\n" + messageURL
	return subject, body, preview
}

func gmailComposeURL(to, subject, body string) string {
	params := url.Values{}
	params.Set("view", "cm")
	params.Set("fs", "1")
	params.Set("su", subject)
	params.Set("body", body)
	if to != "" {
		params.Set("to", to)
	}
	return "https://mail.google.com/mail/?" + params.Encode()
}
