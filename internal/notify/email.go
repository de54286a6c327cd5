package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"planhub/internal/models"
)

// EmailService sends reminder emails through a SendGrid-compatible REST API.
// When no API key is configured it degrades to a no-op so local development
// does not need a mail account.
type EmailService struct {
	apiURL     string
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

// NewEmailService creates a new email sender
func NewEmailService(apiURL, apiKey, fromEmail, fromName string) *EmailService {
	return &EmailService{
		apiURL:    apiURL,
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// mailAddress is the SendGrid v3 address object.
type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// mailPayload is the SendGrid v3 /mail/send request body.
type mailPayload struct {
	Personalizations []struct {
		To []mailAddress `json:"to"`
	} `json:"personalizations"`
	From    mailAddress `json:"from"`
	Subject string      `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (s *EmailService) send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	if s.apiKey == "" {
		log.Printf("⚠️  [EMAIL] MAIL_API_KEY not set, skipping email to %s (%s)", toEmail, subject)
		return nil
	}

	payload := mailPayload{
		From:    mailAddress{Email: s.fromEmail, Name: s.fromName},
		Subject: subject,
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []mailAddress `json:"to"`
	}{To: []mailAddress{{Email: toEmail, Name: toName}}})
	payload.Content = append(payload.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/html", Value: htmlBody})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// SendDeadlineReminderEmail sends a project deadline email. daysRemaining is
// signed: negative when the project is overdue.
func (s *EmailService) SendDeadlineReminderEmail(ctx context.Context, email, name string, projectID int64, projectName, projectCode string, dueDate time.Time, daysRemaining int, overdue bool) error {
	var subject, headline string
	if overdue {
		subject = fmt.Sprintf("[%s] Dự án \"%s\" đã quá hạn", projectCode, projectName)
		headline = fmt.Sprintf("Dự án <b>%s</b> đã quá hạn <b>%d ngày</b>.", projectName, -daysRemaining)
		if daysRemaining == 0 {
			headline = fmt.Sprintf("Dự án <b>%s</b> đến hạn hôm nay.", projectName)
		}
	} else {
		subject = fmt.Sprintf("[%s] Dự án \"%s\" sắp đến hạn", projectCode, projectName)
		headline = fmt.Sprintf("Dự án <b>%s</b> sẽ đến hạn sau <b>%d ngày</b>.", projectName, daysRemaining)
	}

	body := fmt.Sprintf(`<p>Xin chào %s,</p>
<p>%s</p>
<p>Hạn chót: <b>%s</b> (dự án #%d, mã %s)</p>
<p>Vui lòng kiểm tra tiến độ trên PlanHub.</p>`,
		htmlEscape(name), headline, dueDate.Format("02/01/2006"), projectID, projectCode)

	return s.send(ctx, email, name, subject, body)
}

// SendTaskReminderEmail sends a user-set task reminder email.
func (s *EmailService) SendTaskReminderEmail(ctx context.Context, email, name string, taskID int64, title string, remindAt time.Time) error {
	subject := fmt.Sprintf("Nhắc việc: %s", title)
	body := fmt.Sprintf(`<p>Xin chào %s,</p>
<p>Bạn đã đặt nhắc nhở cho công việc <b>%s</b> (#%d) vào lúc <b>%s</b>.</p>`,
		htmlEscape(name), htmlEscape(title), taskID, remindAt.Format("15:04 02/01/2006"))

	return s.send(ctx, email, name, subject, body)
}

// SendKanbanDailyReminderEmail sends the consolidated daily digest with a
// per-board breakdown of incomplete cards.
func (s *EmailService) SendKanbanDailyReminderEmail(ctx context.Context, email, name string, boards []models.DigestBoard) error {
	total := 0
	var sb strings.Builder
	for _, b := range boards {
		fmt.Fprintf(&sb, "<h4>%s</h4><ul>", htmlEscape(b.Title))
		for _, card := range b.Cards {
			due := ""
			if card.DueDate != nil {
				due = fmt.Sprintf(" — hạn %s", card.DueDate.Format("02/01/2006"))
			}
			fmt.Fprintf(&sb, "<li><b>%s</b> (%s)%s</li>", htmlEscape(card.CardTitle), htmlEscape(card.ListTitle), due)
			total++
		}
		sb.WriteString("</ul>")
	}

	subject := fmt.Sprintf("Bạn có %d thẻ chưa hoàn thành", total)
	body := fmt.Sprintf(`<p>Xin chào %s,</p>
<p>Dưới đây là các thẻ kanban chưa hoàn thành của bạn:</p>
%s
<p>Chúc bạn một ngày làm việc hiệu quả!</p>`, htmlEscape(name), sb.String())

	return s.send(ctx, email, name, subject, body)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}
