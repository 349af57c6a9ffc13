package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

type ReviewNoticeData struct {
	PersonID int64
	Note     string
}

// SendReviewNotice alerts a campaign manager that a person was flagged for
// human review and stays blocked until someone clears the flag.
func (s *EmailSender) SendReviewNotice(to string, personID int64, note string) error {
	data := ReviewNoticeData{
		PersonID: personID,
		Note:     note,
	}

	tmplPath := filepath.Join("templates", "review_required.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("reading review notice template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering review notice template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Contact review required: person %d", personID))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("sending review notice over SMTP: %w", err)
	}

	return nil
}
