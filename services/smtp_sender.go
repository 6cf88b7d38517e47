package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPEmailSender sends HTML mail through a submission server. The returned
// provider reference is the generated Message-ID.
type SMTPEmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	sendMail sendMailFunc
}

func NewSMTPEmailSender(host string, port int, username, password, from string) *SMTPEmailSender {
	return &SMTPEmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPEmailSender) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	envelopeFrom := s.from
	if addr, err := mail.ParseAddress(s.from); err == nil {
		envelopeFrom = addr.Address
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(envelopeFrom))

	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("Message-ID: " + messageID + "\r\n")
	msg.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	if err := s.sendMail(addr, auth, envelopeFrom, []string{to}, []byte(msg.String())); err != nil {
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) && rejectsRecipient(protoErr.Code) {
			return "", fmt.Errorf("%w: smtp %d: %s", ErrInvalidRecipient, protoErr.Code, protoErr.Msg)
		}
		return "", fmt.Errorf("smtp: %w", err)
	}
	return messageID, nil
}

// mailbox unavailable, mailbox name not allowed, bad address syntax
func rejectsRecipient(code int) bool {
	return code == 550 || code == 553 || code == 501
}

func domainOf(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 && i < len(address)-1 {
		return address[i+1:]
	}
	return "localhost"
}
