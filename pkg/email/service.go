// Package email sends the daily task reminder digest.
package email

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// Service handles email sending
type Service struct {
	fromEmail   string
	fromName    string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email service.
// With a SendGrid API key emails go out for real; without one they are
// logged to console (development mode).
func NewService(fromEmail, fromName, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// SendTaskDigest sends the list of tasks due today or overdue.
func (s *Service) SendTaskDigest(toEmail, toName string, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Você tem %d tarefa(s) pendente(s) para hoje", len(tasks))
	html, plain := s.renderDigest(toName, tasks)
	return s.send(toEmail, toName, subject, html, plain)
}

func (s *Service) renderDigest(toName string, tasks []models.Task) (html, plain string) {
	var items, lines strings.Builder
	for _, t := range tasks {
		due := "sem prazo"
		if t.DueDate != nil {
			due = t.DueDate.Format("02/01/2006")
		}
		items.WriteString(fmt.Sprintf("<li><strong>%s</strong> — vence em %s</li>\n", t.Title, due))
		lines.WriteString(fmt.Sprintf("- %s (vence em %s)\n", t.Title, due))
	}

	html = fmt.Sprintf(`
		<html>
		<body>
			<h2>Tarefas pendentes</h2>
			<p>Olá %s,</p>
			<p>Estas tarefas vencem hoje ou já estão atrasadas:</p>
			<ul>%s</ul>
			<p>Bom trabalho!</p>
		</body>
		</html>
	`, toName, items.String())

	plain = fmt.Sprintf("Olá %s,\n\nTarefas pendentes em %s:\n%s",
		toName, time.Now().Format("02/01/2006"), lines.String())
	return html, plain
}

func (s *Service) send(toEmail, toName, subject, htmlBody, plainTextBody string) error {
	if !s.useSendGrid {
		log.Printf("📧 [EMAIL] %s", subject)
		log.Printf("   To: %s <%s>", toName, toEmail)
		log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
		log.Printf("   ⚠️  Email NOT sent (development mode)")
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}
