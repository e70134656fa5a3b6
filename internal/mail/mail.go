package mail

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
)

var Module = fx.Provide(NewSMTPSender)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers account mails through an SMTP relay.
type SMTPSender struct {
	dialer dialer
	from   string
	logger *zap.SugaredLogger
}

func NewSMTPSender(cfg *config.Config, logger *zap.SugaredLogger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
		logger: logger,
	}
}

func (s *SMTPSender) SendActivation(to, link string) error {
	m := s.newMessage(to, "[Planner] 계정 활성화", fmt.Sprintf(
		`<p>계정 활성화 링크 주소입니다.</p><p><a href="%s">%s</a></p>`, link, link))
	return s.send(m, to, "activation")
}

func (s *SMTPSender) SendPasswordReset(to, link string) error {
	m := s.newMessage(to, "[Planner] 비밀번호 재설정", fmt.Sprintf(
		`<p>비밀번호 재설정 링크 주소입니다.</p><p><a href="%s">%s</a></p>`, link, link))
	return s.send(m, to, "password reset")
}

func (s *SMTPSender) newMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

func (s *SMTPSender) send(m *gomail.Message, to, kind string) error {
	if err := s.dialer.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "send %s mail", kind)
	}
	s.logger.Debugw("mail sent", "kind", kind, "to", to)
	return nil
}
