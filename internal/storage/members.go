package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PaymentStatus is the lifecycle state of a membership payment request.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
)

// User is a registered player account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsMember     bool
	IsAdmin      bool
	CreatedAt    time.Time
}

// PaymentRequest is a player's claim to have paid for membership,
// awaiting operator verification.
type PaymentRequest struct {
	ID         int64
	UserID     int64
	Username   string
	Amount     int
	Status     PaymentStatus
	CreatedAt  time.Time
	VerifiedAt time.Time // Zero while pending
}

const userColumns = `id, username, password_hash, is_member, is_admin, created_at`

// CreateUser inserts a new account. Returns ErrDuplicate if the username
// is taken.
func (s *Store) CreateUser(username, passwordHash string, isAdmin bool) (*User, error) {
	res, err := s.db.Exec(
		"INSERT INTO users (username, password_hash, is_member, is_admin) VALUES (?, ?, ?, ?)",
		username, passwordHash, isAdmin, isAdmin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("storage: user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("storage: cannot create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return s.UserByID(id)
}

// UserByName looks up an account by username. Returns ErrNotFound if absent.
func (s *Store) UserByName(username string) (*User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// UserByID looks up an account by ID. Returns ErrNotFound if absent.
func (s *Store) UserByID(id int64) (*User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt any
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsMember, &u.IsAdmin, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query user: %w", err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return &u, nil
}

// SetMembership grants or revokes membership. Returns ErrNotFound for an
// unknown user.
func (s *Store) SetMembership(userID int64, member bool) error {
	res, err := s.db.Exec("UPDATE users SET is_member = ? WHERE id = ?", member, userID)
	if err != nil {
		return fmt.Errorf("storage: cannot update membership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot update membership: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePaymentRequest files a pending request for the user. If the user
// already has a pending request, that one is returned unchanged.
func (s *Store) CreatePaymentRequest(userID int64, amount int) (*PaymentRequest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	var id int64
	err = tx.QueryRow(
		"SELECT id FROM payment_requests WHERE user_id = ? AND status = ? ORDER BY id LIMIT 1",
		userID, PaymentPending,
	).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.Exec(
			"INSERT INTO payment_requests (user_id, amount, status) VALUES (?, ?, ?)",
			userID, amount, PaymentPending,
		)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot create payment request: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("storage: cannot get inserted ID: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("storage: cannot query payment requests: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("storage: cannot commit payment request: %w", err)
	}
	return s.PaymentRequest(id)
}

const paymentQuery = `
	SELECT p.id, p.user_id, u.username, p.amount, p.status, p.created_at, p.verified_at
	FROM payment_requests p
	JOIN users u ON u.id = p.user_id`

// PaymentRequest fetches one request by ID. Returns ErrNotFound if absent.
func (s *Store) PaymentRequest(id int64) (*PaymentRequest, error) {
	rows, err := s.db.Query(paymentQuery+" WHERE p.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query payment request: %w", err)
	}
	reqs, err := scanPayments(rows)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, ErrNotFound
	}
	return &reqs[0], nil
}

// PaymentRequests lists requests with the given status, oldest first.
// An empty status lists all requests.
func (s *Store) PaymentRequests(status PaymentStatus) ([]PaymentRequest, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = s.db.Query(paymentQuery + " ORDER BY p.id")
	} else {
		rows, err = s.db.Query(paymentQuery+" WHERE p.status = ? ORDER BY p.id", status)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query payment requests: %w", err)
	}
	return scanPayments(rows)
}

func scanPayments(rows *sql.Rows) ([]PaymentRequest, error) {
	defer rows.Close()

	var reqs []PaymentRequest
	for rows.Next() {
		var p PaymentRequest
		var createdAt, verifiedAt any
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.Amount, &p.Status, &createdAt, &verifiedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.CreatedAt = parseTimestamp(createdAt)
		p.VerifiedAt = parseTimestamp(verifiedAt)
		reqs = append(reqs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return reqs, nil
}

// VerifyPayment marks a pending request verified and grants the owner
// membership in one transaction. Returns ErrNotFound for an unknown ID and
// ErrAlreadyVerified when the request was verified before.
func (s *Store) VerifyPayment(id int64) (*PaymentRequest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	var userID int64
	var status PaymentStatus
	err = tx.QueryRow("SELECT user_id, status FROM payment_requests WHERE id = ?", id).Scan(&userID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query payment request: %w", err)
	}
	if status == PaymentVerified {
		return nil, ErrAlreadyVerified
	}

	if _, err := tx.Exec(
		"UPDATE payment_requests SET status = ?, verified_at = CURRENT_TIMESTAMP WHERE id = ?",
		PaymentVerified, id,
	); err != nil {
		return nil, fmt.Errorf("storage: cannot verify payment: %w", err)
	}
	if _, err := tx.Exec("UPDATE users SET is_member = 1 WHERE id = ?", userID); err != nil {
		return nil, fmt.Errorf("storage: cannot grant membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("storage: cannot commit verification: %w", err)
	}
	return s.PaymentRequest(id)
}
