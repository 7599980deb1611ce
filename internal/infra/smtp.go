package infra

import (
	"fmt"
	"net/smtp"

	"sowin/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending low-stock alert mail.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendAlertaStock notifies the configured recipient that a product fell below
// its minimum stock after a committed sale or adjustment.
func (m *Mailer) SendAlertaStock(to, producto, codigoBarras string, stockActual, stockMinimo int) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Alerta de stock: %s", producto)
	e.Text = []byte(fmt.Sprintf(
		"El producto %s (codigo %s) quedo con stock %d, por debajo del minimo %d.",
		producto, codigoBarras, stockActual, stockMinimo,
	))

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
