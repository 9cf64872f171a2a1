package notify

import (
	"context"

	gomail "gopkg.in/gomail.v2"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/config"
	"github.com/propline/bidboard/pkg/logutils"
)

type smtpChannel struct {
	dialer *gomail.Dialer
	from   string
}

func newSMTPChannel() channel {
	cfg := config.GetConfig().SMTP
	return &smtpChannel{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpChannel) Name() string { return "smtp" }

func (s *smtpChannel) SendTo(_ context.Context, recipient *model.User, n *model.Notification) error {
	attrs := recipient.Attributes.Data()
	if attrs.Email == nil {
		logutils.Log.Warnf("%s does not have an email address", recipient.Name)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", *attrs.Email)
	m.SetHeader("Subject", n.Title)
	m.SetBody("text/plain", n.Body)

	return s.dialer.DialAndSend(m)
}
