package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer delivers the password-reset code. Delivery is fire-and-forget from
// the handlers' point of view: a failure is logged but never changes
// identity state.
type Mailer interface {
	SendPasswordResetCode(to, name, code string) error
}

// SMTP sends through a gomail dialer configured from the environment.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewFromEnv returns an SMTP mailer when SMTP_HOST is configured and a
// log-only mailer otherwise, so local setups work without a mail server.
func NewFromEnv() Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("SMTP_HOST not set, password-reset mails will only be logged")
		return &Log{}
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &SMTP{
		dialer: gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD")),
		from:   os.Getenv("SMTP_FROM"),
	}
}

func (m *SMTP) SendPasswordResetCode(to, name, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your password reset code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nUse this code to reset your password: %s\n\nIf you did not request a reset you can ignore this mail.\n", name, code))
	return m.dialer.DialAndSend(msg)
}

// Log writes the mail to the process log instead of sending it.
type Log struct{}

func (*Log) SendPasswordResetCode(to, name, code string) error {
	log.Printf("password reset code for %s <%s>: %s", name, to, code)
	return nil
}
