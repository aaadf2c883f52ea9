// Package membership manages player accounts and the paid membership that
// unlocks members-only games. Payments are claimed by players and verified
// by an operator; verification grants membership.
package membership

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/gem-arcade/internal/storage"
)

// Errors returned by Service.
var (
	ErrInvalidUsername    = errors.New("membership: username must be 3-32 characters of a-z, 0-9, _ or -")
	ErrWeakPassword       = errors.New("membership: password must be at least 6 characters")
	ErrUserExists         = errors.New("membership: username already taken")
	ErrInvalidCredentials = errors.New("membership: invalid username or password")
	ErrUnknownUser        = errors.New("membership: unknown user")
	ErrAlreadyMember      = errors.New("membership: already a member")
	ErrUnknownPayment     = errors.New("membership: unknown payment request")
	ErrAlreadyVerified    = errors.New("membership: payment already verified")
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,32}$`)

// Store is the persistence the service needs. *storage.Store implements it.
type Store interface {
	CreateUser(username, passwordHash string, isAdmin bool) (*storage.User, error)
	UserByName(username string) (*storage.User, error)
	SetMembership(userID int64, member bool) error
	CreatePaymentRequest(userID int64, amount int) (*storage.PaymentRequest, error)
	PaymentRequests(status storage.PaymentStatus) ([]storage.PaymentRequest, error)
	VerifyPayment(id int64) (*storage.PaymentRequest, error)
}

var _ Store = (*storage.Store)(nil)

// Options configures a Service.
type Options struct {
	Price    int         // Amount recorded on each payment request
	HashCost int         // bcrypt cost; 0 means bcrypt.DefaultCost
	Logger   *log.Logger // nil means log.Default()
}

// Service implements registration, login and the membership ledger.
type Service struct {
	store  Store
	price  int
	cost   int
	logger *log.Logger
}

// NewService creates a membership service over store.
func NewService(store Store, opts Options) *Service {
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:  store,
		price:  opts.Price,
		cost:   cost,
		logger: logger.WithPrefix("membership"),
	}
}

// NormalizeUsername lowercases and trims a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidUsername reports whether a normalized username is acceptable.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Register creates a new, non-member account.
func (s *Service) Register(username, password string) (Account, error) {
	return s.create(username, password, false)
}

func (s *Service) create(username, password string, admin bool) (Account, error) {
	username = NormalizeUsername(username)
	if !ValidUsername(username) {
		return Account{}, ErrInvalidUsername
	}
	if len(password) < MinPasswordLen {
		return Account{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Account{}, fmt.Errorf("membership: hash password: %w", err)
	}

	u, err := s.store.CreateUser(username, string(hash), admin)
	if errors.Is(err, storage.ErrDuplicate) {
		return Account{}, ErrUserExists
	}
	if err != nil {
		return Account{}, fmt.Errorf("membership: register %s: %w", username, err)
	}

	s.logger.Info("registered", "user", u.Username, "admin", admin)
	return accountFrom(u), nil
}

// Login checks a password and returns the account.
func (s *Service) Login(username, password string) (Account, error) {
	u, err := s.store.UserByName(NormalizeUsername(username))
	if errors.Is(err, storage.ErrNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("membership: login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return accountFrom(u), nil
}

// Lookup returns the account for a username without checking a password.
// SSH sessions use it once the transport has authenticated the user.
func (s *Service) Lookup(username string) (Account, error) {
	u, err := s.store.UserByName(NormalizeUsername(username))
	if errors.Is(err, storage.ErrNotFound) {
		return Account{}, ErrUnknownUser
	}
	if err != nil {
		return Account{}, fmt.Errorf("membership: lookup: %w", err)
	}
	return accountFrom(u), nil
}

// RequestMembership files a payment claim for the user. A user with a
// pending claim gets that claim back.
func (s *Service) RequestMembership(username string) (*storage.PaymentRequest, error) {
	acct, err := s.Lookup(username)
	if err != nil {
		return nil, err
	}
	if acct.IsMember() {
		return nil, ErrAlreadyMember
	}

	req, err := s.store.CreatePaymentRequest(acct.ID, s.price)
	if err != nil {
		return nil, fmt.Errorf("membership: request: %w", err)
	}
	s.logger.Info("payment requested", "user", acct.Username, "payment", req.ID, "amount", req.Amount)
	return req, nil
}

// Pending lists payment claims awaiting verification.
func (s *Service) Pending() ([]storage.PaymentRequest, error) {
	reqs, err := s.store.PaymentRequests(storage.PaymentPending)
	if err != nil {
		return nil, fmt.Errorf("membership: pending: %w", err)
	}
	return reqs, nil
}

// Approve verifies a payment claim, granting its owner membership.
func (s *Service) Approve(paymentID int64) (*storage.PaymentRequest, error) {
	req, err := s.store.VerifyPayment(paymentID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrUnknownPayment
	case errors.Is(err, storage.ErrAlreadyVerified):
		return nil, ErrAlreadyVerified
	case err != nil:
		return nil, fmt.Errorf("membership: approve %d: %w", paymentID, err)
	}

	s.logger.Info("membership granted", "user", req.Username, "payment", req.ID)
	return req, nil
}

// Revoke removes membership from a user. Admin accounts stay members.
func (s *Service) Revoke(username string) error {
	acct, err := s.Lookup(username)
	if err != nil {
		return err
	}
	if err := s.store.SetMembership(acct.ID, false); err != nil {
		return fmt.Errorf("membership: revoke %s: %w", acct.Username, err)
	}
	s.logger.Warn("membership revoked", "user", acct.Username)
	return nil
}

// EnsureAdmin creates the admin account if it does not exist yet. An
// existing account is returned unchanged.
func (s *Service) EnsureAdmin(username, password string) (Account, error) {
	acct, err := s.Lookup(username)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrUnknownUser) {
		return Account{}, err
	}
	return s.create(username, password, true)
}
