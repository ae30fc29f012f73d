package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"deal-pipeline-api/models"
	"deal-pipeline-api/workflow"
)

type notificationWriter interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// MailFunc sends an HTML email. config.SendMail satisfies it.
type MailFunc func(to []string, subject, html string) error

// MailNotifier stores in-app notifications and sends email through the
// configured SMTP relay.
type MailNotifier struct {
	store   notificationWriter
	send    MailFunc
	baseURL string
}

func NewMailNotifier(store notificationWriter, send MailFunc, baseURL string) *MailNotifier {
	return &MailNotifier{store: store, send: send, baseURL: strings.TrimRight(baseURL, "/")}
}

func (n *MailNotifier) InApp(ctx context.Context, userID int, dealID *int, msg workflow.Message) error {
	row := &models.Notification{
		UserID:   uint(userID),
		Title:    msg.Title,
		Message:  msg.Body,
		Type:     msg.Type,
		CreateAt: time.Now(),
	}
	if dealID != nil {
		id := uint(*dealID)
		row.DealID = &id
	}
	return n.store.CreateNotification(ctx, row)
}

func (n *MailNotifier) Email(ctx context.Context, to []string, recipientName string, msg workflow.Message) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	html, err := renderDealEmail(msg, recipientName, n.baseURL)
	if err != nil {
		return err
	}
	return n.send(to, msg.Title, html)
}

var accentByType = map[string]string{
	"success": "#059669",
	"warning": "#d97706",
	"error":   "#dc2626",
}

type dealEmail struct {
	Subject    string
	Greeting   string
	Paragraphs []string
	Accent     string
	PortalURL  string
}

var dealEmailTmpl = template.Must(template.New("deal-email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-top:4px solid {{.Accent}};border-radius:12px;padding:24px;">
    <h1 style="margin:0 0 16px 0;font-size:18px;color:#111827;">{{.Subject}}</h1>
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">{{.Greeting}}</p>
    {{range .Paragraphs}}<p style="margin:0 0 12px 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">{{.}}</p>
    {{end}}{{if .PortalURL}}<p style="margin:20px 0 0 0;"><a href="{{.PortalURL}}" style="display:inline-block;padding:10px 18px;border-radius:8px;background-color:{{.Accent}};color:#ffffff;text-decoration:none;font-weight:600;">Open the deal portal</a></p>
    {{end}}
  </div>
</div>
</body>
</html>`))

// renderDealEmail builds the HTML body for msg. Each non-blank line of the
// body becomes a paragraph; the portal link is rendered as a button.
func renderDealEmail(msg workflow.Message, recipientName, portalURL string) (string, error) {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "there"
	}
	accent, ok := accentByType[msg.Type]
	if !ok {
		accent = "#2563eb"
	}

	body := strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\r", "\n")
	var paragraphs []string
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}

	var b strings.Builder
	err := dealEmailTmpl.Execute(&b, dealEmail{
		Subject:    msg.Title,
		Greeting:   fmt.Sprintf("Dear %s,", name),
		Paragraphs: paragraphs,
		Accent:     accent,
		PortalURL:  portalURL,
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return b.String(), nil
}
