// Package accounts stores user accounts in PostgreSQL. The store receives its
// database handle explicitly; every call borrows a pooled connection only for
// the duration of that call.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/giygas/pharmainsight-api/logging"
	"github.com/giygas/pharmainsight-api/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

// Account is the public view of a stored account. The password hash never
// leaves the package.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccount carries the fields needed to register an account
type NewAccount struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// DBTX is the subset of *pgxpool.Pool used by the store. Pool methods acquire
// a connection per call and release it when the call (or row scan) ends.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db       DBTX
	hashCost int
}

type Option func(*Store)

// WithHashCost overrides the bcrypt cost
func WithHashCost(cost int) Option {
	return func(s *Store) {
		s.hashCost = cost
	}
}

func NewStore(db DBTX, opts ...Option) *Store {
	s := &Store{db: db, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const schemaSQL = `
create table if not exists accounts (
	id            bigserial primary key,
	name          text not null,
	email         text not null unique,
	phone         text not null default '',
	password_hash text not null,
	created_at    timestamptz not null default now()
)`

// EnsureSchema creates the accounts table when missing
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	return nil
}

// CreateAccount hashes the password and inserts the account. The email is
// stored trimmed and lower-cased.
func (s *Store) CreateAccount(ctx context.Context, in NewAccount) (*Account, error) {
	email := normalizeEmail(in.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		observe("create", "error")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	const q = `
insert into accounts(name, email, phone, password_hash)
values ($1, $2, $3, $4)
returning id, created_at`

	account := &Account{
		Name:  strings.TrimSpace(in.Name),
		Email: email,
		Phone: strings.TrimSpace(in.Phone),
	}
	err = s.db.QueryRow(ctx, q, account.Name, account.Email, account.Phone, string(hash)).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			observe("create", "conflict")
			return nil, ErrEmailTaken
		}
		observe("create", "error")
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	observe("create", "ok")
	logging.Info("Account created", "id", account.ID)
	return account, nil
}

// FindByCredentials returns the account matching email and password. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Store) FindByCredentials(ctx context.Context, email, password string) (*Account, error) {
	const q = `
select id, name, email, phone, password_hash, created_at
from accounts
where email = $1`

	var (
		account Account
		hash    string
	)
	err := s.db.QueryRow(ctx, q, normalizeEmail(email)).
		Scan(&account.ID, &account.Name, &account.Email, &account.Phone, &hash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observe("login", "rejected")
			return nil, ErrInvalidCredentials
		}
		observe("login", "error")
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			observe("login", "rejected")
			return nil, ErrInvalidCredentials
		}
		observe("login", "error")
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	observe("login", "ok")
	return &account, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*Account, error) {
	const q = `
select id, name, email, phone, created_at
from accounts
where id = $1`

	var account Account
	err := s.db.QueryRow(ctx, q, id).
		Scan(&account.ID, &account.Name, &account.Email, &account.Phone, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observe("find", "not_found")
			return nil, ErrAccountNotFound
		}
		observe("find", "error")
		return nil, fmt.Errorf("failed to query account %d: %w", id, err)
	}

	observe("find", "ok")
	return &account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func observe(operation, result string) {
	metrics.AccountOperationsTotal.WithLabelValues(operation, result).Inc()
}
