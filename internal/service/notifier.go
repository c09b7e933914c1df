package service

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

// Notifier sends receipt emails. Delivery is strictly best-effort: failures
// are logged and never affect the ledger.
type Notifier struct {
	db     *gorm.DB
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewNotifier(db *gorm.DB, cfg SMTPConfig, logger *zap.Logger) *Notifier {
	return &Notifier{db: db, cfg: cfg, logger: logger}
}

func (n *Notifier) SendReceipt(transaction *models.Transaction) {
	var user models.User
	if err := n.db.First(&user, "id = ?", transaction.UserID).Error; err != nil {
		n.logger.Warn("receipt email skipped, user not found",
			zap.String("order_id", transaction.OrderID), zap.Error(err))
		return
	}

	subject := fmt.Sprintf("Payment receipt %s", transaction.OrderID)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received your payment of %d %s for order <b>%s</b>. Your courses are now available in My Learning.</p>",
		user.Name, transaction.Amount, transaction.Currency, transaction.OrderID,
	)

	if err := n.send(user.Email, subject, body); err != nil {
		n.logger.Warn("receipt email failed",
			zap.String("order_id", transaction.OrderID),
			zap.String("to", user.Email),
			zap.Error(err))
		return
	}

	n.logger.Info("receipt email sent",
		zap.String("order_id", transaction.OrderID),
		zap.String("to", user.Email))
}

func (n *Notifier) send(to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", n.cfg.Username) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	addr := n.cfg.Host + ":" + n.cfg.Port

	// Implicit TLS for port 465
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(n.cfg.Username); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
