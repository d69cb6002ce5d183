package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/soullog/internal/models"
)

// IdentityRecord is an identity together with its stored credential.
type IdentityRecord struct {
	models.Identity
	PasswordHash string
}

// IdentityStore persists identities.
type IdentityStore interface {
	Create(ctx context.Context, email, passwordHash string) (models.Identity, error)
	CreateAnonymous(ctx context.Context) (models.Identity, error)
	GetByEmail(ctx context.Context, email string) (IdentityRecord, error)
}

var _ IdentityStore = (*PostgresIdentities)(nil)

// PostgresIdentities stores identities in the identities table.
type PostgresIdentities struct {
	db *sql.DB
}

func NewPostgresIdentities(db *sql.DB) *PostgresIdentities {
	return &PostgresIdentities{db: db}
}

const uniqueViolation = "23505"

func (r *PostgresIdentities) Create(ctx context.Context, email, passwordHash string) (models.Identity, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, anonymous, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
	`, id, email, passwordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Identity{}, ErrEmailTaken
		}
		return models.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}
	return models.Identity{UID: id.String(), Email: email}, nil
}

func (r *PostgresIdentities) CreateAnonymous(ctx context.Context) (models.Identity, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, anonymous, created_at)
		VALUES ($1, NULL, NULL, TRUE, NOW())
	`, id)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to create anonymous identity: %w", err)
	}
	return models.Identity{UID: id.String(), Anonymous: true}, nil
}

func (r *PostgresIdentities) GetByEmail(ctx context.Context, email string) (IdentityRecord, error) {
	var (
		id   uuid.UUID
		hash string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM identities WHERE email = $1 AND anonymous = FALSE
	`, email).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IdentityRecord{}, ErrNotFound
		}
		return IdentityRecord{}, fmt.Errorf("failed to get identity by email: %w", err)
	}
	return IdentityRecord{
		Identity:     models.Identity{UID: id.String(), Email: email},
		PasswordHash: hash,
	}, nil
}

var _ IdentityStore = (*MemoryIdentities)(nil)

// MemoryIdentities keeps identities in process, for tests and local runs without Postgres.
type MemoryIdentities struct {
	mu      sync.Mutex
	byEmail map[string]IdentityRecord
}

func NewMemoryIdentities() *MemoryIdentities {
	return &MemoryIdentities{byEmail: make(map[string]IdentityRecord)}
}

func (m *MemoryIdentities) Create(ctx context.Context, email, passwordHash string) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return models.Identity{}, ErrEmailTaken
	}
	rec := IdentityRecord{
		Identity:     models.Identity{UID: uuid.NewString(), Email: email},
		PasswordHash: passwordHash,
	}
	m.byEmail[email] = rec
	return rec.Identity, nil
}

func (m *MemoryIdentities) CreateAnonymous(ctx context.Context) (models.Identity, error) {
	return models.Identity{UID: uuid.NewString(), Anonymous: true}, nil
}

func (m *MemoryIdentities) GetByEmail(ctx context.Context, email string) (IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byEmail[email]
	if !ok {
		return IdentityRecord{}, ErrNotFound
	}
	return rec, nil
}
