package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/monitoring"
	"csoportal/backend/internal/pool"
)

// ErrMailerDisabled 邮件发送未启用错误
var ErrMailerDisabled = errors.New("mailer is disabled")

// Mailer 通过外部 SMTP 服务发送通知邮件。
// 信函通知走协程池异步发送，联系消息转发同步发送。
type Mailer struct {
	cfg  config.MailConfig
	pool *pool.WorkerPool
	log  *zap.Logger
}

// New 创建邮件发送器
func New(cfg config.MailConfig, log *zap.Logger) *Mailer {
	return &Mailer{
		cfg:  cfg,
		pool: pool.NewWorkerPool(4, 256, log),
		log:  log,
	}
}

// Start 启动异步发送协程
func (m *Mailer) Start(ctx context.Context) {
	m.pool.Start(ctx)
}

// Stop 停止异步发送，等待队列中的邮件发完
func (m *Mailer) Stop() {
	m.pool.Stop()
}

// NotifyLetter 给信函收件组织逐一发送邮件通知。
// 发送是尽力而为：单个收件人失败只记日志，不影响其余收件人。
func (m *Mailer) NotifyLetter(letter *domain.Letter, recipients []domain.CSO) {
	if !m.cfg.Enabled {
		return
	}

	subject := fmt.Sprintf("[%s] %s", letter.Type, letter.Title)
	body := letterBody(letter)

	for _, cso := range recipients {
		to := cso.Email
		name := cso.Name
		ok := m.pool.TrySubmit(func() {
			if err := m.send([]string{to}, subject, body); err != nil {
				monitoring.MailSendFailures.Inc()
				m.log.Warn("failed to send letter notice",
					zap.String("to", to), zap.Int64("letter_id", letter.ID), zap.Error(err))
				return
			}
			monitoring.MailsSent.Inc()
			m.log.Info("letter notice sent",
				zap.String("to", to), zap.String("cso", name), zap.Int64("letter_id", letter.ID))
		})
		if !ok {
			m.log.Warn("mail queue full, dropping letter notice",
				zap.String("to", to), zap.Int64("letter_id", letter.ID))
		}
	}
}

// SendContactMessage 把访客联系消息转发到机构邮箱
func (m *Mailer) SendContactMessage(msg *domain.ContactMessage) error {
	if !m.cfg.Enabled {
		return ErrMailerDisabled
	}

	subject := "Contact form: " + msg.Subject
	body := fmt.Sprintf("From: %s <%s>\r\n\r\n%s\r\n", msg.Name, msg.Email, msg.Message)

	if err := m.send([]string{m.cfg.ContactTo}, subject, body); err != nil {
		monitoring.MailSendFailures.Inc()
		return err
	}

	monitoring.MailsSent.Inc()
	return nil
}

// send 通过 SMTP 投递一封邮件
func (m *Mailer) send(to []string, subject, body string) error {
	var auth sasl.Client
	if m.cfg.Username != "" {
		auth = sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)
	}

	msg := buildMessage(m.cfg.From, to, subject, body)
	return smtp.SendMail(m.cfg.SMTPAddr, auth, m.cfg.From, to, strings.NewReader(msg))
}

func buildMessage(from string, to []string, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

func letterBody(letter *domain.Letter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have received a new %s letter.\r\n\r\n", strings.ToLower(letter.Type))
	fmt.Fprintf(&b, "Title: %s\r\n", letter.Title)
	if letter.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\r\n", letter.Summary)
	}
	if letter.AttachmentName != nil {
		fmt.Fprintf(&b, "Attachment: %s\r\n", *letter.AttachmentName)
	}
	b.WriteString("\r\nPlease sign in to the portal to view the full letter.\r\n")
	return b.String()
}
