package notify

import (
	"context"
	"os"
	"testing"

	"tradeforce/internal/logger"
	"tradeforce/internal/user"
	"tradeforce/internal/verification"
	"tradeforce/internal/wallet"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type MockUserDirectory struct{ mock.Mock }

func (m *MockUserDirectory) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockWalletDirectory struct{ mock.Mock }

func (m *MockWalletDirectory) GetWalletByID(ctx context.Context, id int) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func newTestService(rdb *redis.Client, users UserDirectory, wallets WalletDirectory) *Service {
	return &Service{
		redis:    rdb,
		users:    users,
		wallets:  wallets,
		from:     "noreply@tradeforce.app",
		fromName: "TradeForce",
		smtpHost: "smtp.test.com",
		smtpPort: "587",
		smtpUser: "test@example.com",
		smtpPass: "password",
	}
}

func expectQueued(rmock redismock.ClientMock) {
	rmock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)
	rmock.ExpectLLen(queueKey).SetVal(1)
}

func TestTransactionReceived(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	users := new(MockUserDirectory)
	svc := newTestService(rdb, users, nil)
	ctx := context.Background()

	users.On("FindByID", ctx, 2).Return(&user.User{ID: 2, Email: "u@example.com", FirstName: "Ada"}, nil)
	expectQueued(rmock)

	tx := &wallet.Transaction{ID: 1, WalletID: 10, AmountCents: 5000, Type: wallet.TypeDeposit, Reference: "TF-1", Method: "whatsapp"}
	svc.TransactionReceived(ctx, 2, tx)

	assert.NoError(t, rmock.ExpectationsWereMet())
	users.AssertExpectations(t)
}

func TestTransactionReceivedUnknownUser(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	users := new(MockUserDirectory)
	svc := newTestService(rdb, users, nil)
	ctx := context.Background()

	users.On("FindByID", ctx, 9).Return(nil, user.ErrUserNotFound)

	svc.TransactionReceived(ctx, 9, &wallet.Transaction{ID: 1, Type: wallet.TypeDeposit})

	// Nothing may reach the queue for an unresolvable recipient.
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestTransactionDecidedResolvesOwner(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	users := new(MockUserDirectory)
	wallets := new(MockWalletDirectory)
	svc := newTestService(rdb, users, wallets)
	ctx := context.Background()

	wallets.On("GetWalletByID", ctx, 10).Return(&wallet.Wallet{ID: 10, UserID: 2}, nil)
	users.On("FindByID", ctx, 2).Return(&user.User{ID: 2, Email: "u@example.com", FirstName: "Ada"}, nil)
	expectQueued(rmock)

	tx := &wallet.Transaction{ID: 1, WalletID: 10, AmountCents: 5000, Type: wallet.TypeWithdrawal, Status: wallet.StatusRejected, Reference: "TF-1"}
	svc.TransactionDecided(ctx, tx, "reference mismatch")

	assert.NoError(t, rmock.ExpectationsWereMet())
	wallets.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestVerificationReceived(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	users := new(MockUserDirectory)
	svc := newTestService(rdb, users, nil)
	ctx := context.Background()

	users.On("FindByID", ctx, 2).Return(&user.User{ID: 2, Email: "u@example.com", FirstName: "Ada"}, nil)
	expectQueued(rmock)

	svc.VerificationReceived(ctx, 2)

	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestVerificationReviewed(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	users := new(MockUserDirectory)
	svc := newTestService(rdb, users, nil)
	ctx := context.Background()

	users.On("FindByID", ctx, 2).Return(&user.User{ID: 2, Email: "u@example.com", FirstName: "Ada"}, nil)
	expectQueued(rmock)

	notes := "document expired"
	svc.VerificationReviewed(ctx, &verification.VerificationRequest{
		ID:         5,
		UserID:     2,
		Status:     verification.StatusRejected,
		AdminNotes: &notes,
	})

	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	svc := newTestService(rdb, nil, nil)
	ctx := context.Background()

	rmock.ExpectLLen(queueKey).SetVal(5)

	assert.Equal(t, int64(5), svc.QueueLength(ctx))
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestEnqueueRedisError(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	users := new(MockUserDirectory)
	svc := newTestService(rdb, users, nil)
	ctx := context.Background()

	users.On("FindByID", ctx, 2).Return(&user.User{ID: 2, Email: "u@example.com", FirstName: "Ada"}, nil)
	rmock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(assert.AnError)

	// Queue failures are logged and swallowed; the ledger write already
	// succeeded by the time a notice goes out.
	svc.VerificationReceived(ctx, 2)

	assert.NoError(t, rmock.ExpectationsWereMet())
}
