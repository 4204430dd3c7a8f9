package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"tradeforce/internal/logger"
	"tradeforce/internal/metrics"
	"tradeforce/internal/user"
	"tradeforce/internal/verification"
	"tradeforce/internal/wallet"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// UserDirectory resolves recipients. Satisfied by user.Repository.
type UserDirectory interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

// WalletDirectory maps a transaction back to its owner. Satisfied by
// wallet.Repository.
type WalletDirectory interface {
	GetWalletByID(ctx context.Context, id int) (*wallet.Wallet, error)
}

type Service struct {
	redis    *redis.Client
	users    UserDirectory
	wallets  WalletDirectory
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(users UserDirectory, wallets WalletDirectory, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		users:    users,
		wallets:  wallets,
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.Tries = 0
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", job.To, err)
		return err
	}

	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))
	logger.Infof("Notification queued: %s to %s", job.Subject, job.To)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending notification to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordNotification(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Infof("Notification sent successfully to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

// TransactionReceived acknowledges a newly submitted deposit or withdrawal
// request. Notification failures never block the request itself.
func (s *Service) TransactionReceived(ctx context.Context, userID int, tx *wallet.Transaction) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Errorf("Cannot notify user %d about transaction %d: %v", userID, tx.ID, err)
		return
	}

	subject := "Deposit Request Received - " + tx.Reference
	if tx.Type == wallet.TypeWithdrawal {
		subject = "Withdrawal Request Received - " + tx.Reference
	}

	body := fmt.Sprintf(`Hi %s,

We received your %s request and it is awaiting review.

Amount: %s
Reference: %s
Method: %s

You will hear from us once it has been processed.

- TradeForce Team`, u.FirstName, tx.Type, wallet.FormatCents(tx.AmountCents), tx.Reference, tx.Method)

	_ = s.enqueue(ctx, Job{
		Type:    "transaction_received",
		To:      u.Email,
		Name:    u.FirstName,
		Subject: subject,
		Body:    body,
	})
}

// TransactionDecided reports an admin decision back to the wallet owner. The
// owner is resolved through the wallet because the decision is made by an
// administrator, not the owner.
func (s *Service) TransactionDecided(ctx context.Context, tx *wallet.Transaction, note string) {
	w, err := s.wallets.GetWalletByID(ctx, tx.WalletID)
	if err != nil {
		logger.Errorf("Cannot resolve owner of wallet %d for transaction %d: %v", tx.WalletID, tx.ID, err)
		return
	}

	u, err := s.users.FindByID(ctx, w.UserID)
	if err != nil {
		logger.Errorf("Cannot notify user %d about transaction %d: %v", w.UserID, tx.ID, err)
		return
	}

	var subject string
	switch tx.Status {
	case wallet.StatusCompleted:
		subject = "Transaction Completed - " + tx.Reference
	case wallet.StatusRejected:
		subject = "Transaction Rejected - " + tx.Reference
	default:
		subject = "Transaction Failed - " + tx.Reference
	}

	body := fmt.Sprintf(`Hi %s,

Your %s request %s has been %s.

Amount: %s
`, u.FirstName, tx.Type, tx.Reference, tx.Status, wallet.FormatCents(tx.AmountCents))
	if note != "" {
		body += fmt.Sprintf("Note: %s\n", note)
	}
	body += "\n- TradeForce Team"

	_ = s.enqueue(ctx, Job{
		Type:    "transaction_decided",
		To:      u.Email,
		Name:    u.FirstName,
		Subject: subject,
		Body:    body,
	})
}

func (s *Service) VerificationReceived(ctx context.Context, userID int) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Errorf("Cannot notify user %d about verification submission: %v", userID, err)
		return
	}

	body := fmt.Sprintf(`Hi %s,

Your identity documents were received and are awaiting review.

We will let you know as soon as the review is done.

- TradeForce Team`, u.FirstName)

	_ = s.enqueue(ctx, Job{
		Type:    "verification_received",
		To:      u.Email,
		Name:    u.FirstName,
		Subject: "Identity Verification Received",
		Body:    body,
	})
}

func (s *Service) VerificationReviewed(ctx context.Context, req *verification.VerificationRequest) {
	u, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		logger.Errorf("Cannot notify user %d about verification review: %v", req.UserID, err)
		return
	}

	subject := "Identity Verification Approved"
	if req.Status == verification.StatusRejected {
		subject = "Identity Verification Rejected"
	}

	body := fmt.Sprintf(`Hi %s,

Your identity verification has been %s.
`, u.FirstName, req.Status)
	if req.AdminNotes != nil && *req.AdminNotes != "" {
		body += fmt.Sprintf("Notes: %s\n", *req.AdminNotes)
	}
	body += "\n- TradeForce Team"

	_ = s.enqueue(ctx, Job{
		Type:    "verification_reviewed",
		To:      u.Email,
		Name:    u.FirstName,
		Subject: subject,
		Body:    body,
	})
}
