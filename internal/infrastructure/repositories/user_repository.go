// Package repositories implements PostgreSQL-backed stores for user
// identity data.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
)

// UserRepository implements user identity lookups using PostgreSQL
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

type userRow struct {
	ID                int64          `db:"id"`
	Email             string         `db:"email"`
	NetworkID         sql.NullInt64  `db:"network_id"`
	VerificationLevel int            `db:"verification_level"`
	TOTPSecret        sql.NullString `db:"totp_secret"`
}

func (row userRow) toEntity() *entities.User {
	return &entities.User{
		ID:                row.ID,
		Email:             row.Email,
		NetworkID:         row.NetworkID.Int64,
		VerificationLevel: row.VerificationLevel,
		TOTPSecret:        row.TOTPSecret.String,
	}
}

// GetByKitID retrieves a user by exchange-local ID. Returns (nil, nil)
// when no user exists.
func (r *UserRepository) GetByKitID(ctx context.Context, id int64) (*entities.User, error) {
	query := `
		SELECT id, email, network_id, verification_level, totp_secret
		FROM users
		WHERE id = $1`

	var row userRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return row.toEntity(), nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no user
// exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `
		SELECT id, email, network_id, verification_level, totp_secret
		FROM users
		WHERE email = $1`

	var row userRow
	err := r.db.GetContext(ctx, &row, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return row.toEntity(), nil
}

// GetTOTPSecret returns a user's TOTP secret, empty when OTP is not
// enabled
func (r *UserRepository) GetTOTPSecret(ctx context.Context, userID int64) (string, error) {
	query := `SELECT totp_secret FROM users WHERE id = $1`

	var secret sql.NullString
	err := r.db.GetContext(ctx, &secret, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get otp secret: %w", err)
	}
	return secret.String, nil
}

// MapKitIDsToNetworkIDs resolves exchange-local IDs to ledger account
// IDs in one query. Users without a ledger account map to 0.
func (r *UserRepository) MapKitIDsToNetworkIDs(ctx context.Context, kitIDs []int64) (map[int64]int64, error) {
	query := `
		SELECT id, network_id
		FROM users
		WHERE id = ANY($1)`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(kitIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to map user ids: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]int64, len(kitIDs))
	for rows.Next() {
		var id int64
		var networkID sql.NullInt64
		if err := rows.Scan(&id, &networkID); err != nil {
			return nil, fmt.Errorf("failed to scan user id mapping: %w", err)
		}
		result[id] = networkID.Int64
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user id mappings: %w", err)
	}

	return result, nil
}

// MapNetworkIDsToKitIDs resolves ledger account IDs back to
// exchange-local IDs in one query.
func (r *UserRepository) MapNetworkIDsToKitIDs(ctx context.Context, networkIDs []int64) (map[int64]int64, error) {
	query := `
		SELECT network_id, id
		FROM users
		WHERE network_id = ANY($1)`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(networkIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to map network ids: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]int64, len(networkIDs))
	for rows.Next() {
		var networkID, id int64
		if err := rows.Scan(&networkID, &id); err != nil {
			return nil, fmt.Errorf("failed to scan network id mapping: %w", err)
		}
		result[networkID] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read network id mappings: %w", err)
	}

	return result, nil
}
