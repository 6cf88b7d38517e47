package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogMessageSender stands in for the message provider when none is configured.
type LogMessageSender struct {
	logger *logrus.Logger
}

func NewLogMessageSender(logger *logrus.Logger) *LogMessageSender {
	return &LogMessageSender{logger: logger}
}

func (s *LogMessageSender) Send(ctx context.Context, to, body string) (string, error) {
	ref := "log-" + uuid.NewString()
	s.logger.WithFields(logrus.Fields{"to": to, "ref": ref}).Info("[notify] message\n" + body)
	return ref, nil
}

// LogEmailSender stands in for the mail server when none is configured.
type LogEmailSender struct {
	logger *logrus.Logger
}

func NewLogEmailSender(logger *logrus.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	ref := "log-" + uuid.NewString()
	s.logger.WithFields(logrus.Fields{"to": to, "subject": subject, "ref": ref}).Info("[notify] email")
	return ref, nil
}
