package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	"walletreg/pkg/platform/sentinel"
	txcontext "walletreg/pkg/platform/tx"
)

const (
	defaultTxTimeout = 5 * time.Second

	// pgCheckViolation is the SQLSTATE for a failed CHECK constraint.
	pgCheckViolation = "23514"

	// VerificationChannel carries the hex address of every committed
	// verification write. Postgres delivers NOTIFY only on commit.
	VerificationChannel = "walletreg_verifications"
)

var _ service.Store = (*PostgresStore)(nil)

// PostgresStore persists the registry in PostgreSQL.
//
// Writers lock the singleton registry_state row, so concurrent writers on
// any number of instances apply one at a time.
type PostgresStore struct {
	db        *sql.DB
	txTimeout time.Duration
}

// NewPostgresStore constructs a PostgreSQL-backed registry store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, txTimeout: defaultTxTimeout}
}

// RunInTx runs fn inside one transaction. The *sql.Tx is placed on the
// context handed to fn so the outbox sink writes in the same transaction.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx service.TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registry transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), &postgresTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registry transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadState(ctx context.Context) (*models.RegistryState, error) {
	return scanState(s.db.QueryRowContext(ctx, `
		SELECT owner, total_verifications, last_verified_at
		FROM registry_state
		WHERE id = 1
	`))
}

func (s *PostgresStore) FindVerification(ctx context.Context, address id.WalletAddress) (*models.VerificationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT risk_score, risk_level, verified_at, verified_by, is_sanctioned
		FROM wallet_verifications
		WHERE address = $1
	`, address.Bytes())

	var r verificationRow
	if err := row.Scan(&r.riskScore, &r.riskLevel, &r.verifiedAt, &r.verifiedBy, &r.isSanctioned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	record, err := r.toRecord()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *PostgresStore) HasVerification(ctx context.Context, address id.WalletAddress) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM wallet_verifications WHERE address = $1)
	`, address.Bytes()).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check verification: %w", err)
	}
	return found, nil
}

func (s *PostgresStore) FindVerifications(ctx context.Context, addresses []id.WalletAddress) (map[id.WalletAddress]models.VerificationRecord, error) {
	found := make(map[id.WalletAddress]models.VerificationRecord, len(addresses))
	if len(addresses) == 0 {
		return found, nil
	}

	keys := make([][]byte, len(addresses))
	for i, addr := range addresses {
		keys[i] = addr.Bytes()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, risk_score, risk_level, verified_at, verified_by, is_sanctioned
		FROM wallet_verifications
		WHERE address = ANY($1)
	`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("find verifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rawAddress []byte
			r          verificationRow
		)
		if err := rows.Scan(&rawAddress, &r.riskScore, &r.riskLevel, &r.verifiedAt, &r.verifiedBy, &r.isSanctioned); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		addr, err := id.WalletAddressFromBytes(rawAddress)
		if err != nil {
			return nil, fmt.Errorf("decode wallet address: %w", err)
		}
		record, err := r.toRecord()
		if err != nil {
			return nil, err
		}
		found[addr] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return found, nil
}

// postgresTx is the write side of a registry transaction.
type postgresTx struct {
	tx *sql.Tx
}

// LoadState reads the registry state and holds its row lock until the
// transaction ends.
func (t *postgresTx) LoadState(ctx context.Context) (*models.RegistryState, error) {
	return scanState(t.tx.QueryRowContext(ctx, `
		SELECT owner, total_verifications, last_verified_at
		FROM registry_state
		WHERE id = 1
		FOR UPDATE
	`))
}

func (t *postgresTx) CreateState(ctx context.Context, owner id.AccountID) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO registry_state (id, owner, total_verifications)
		VALUES (1, $1, 0)
		ON CONFLICT (id) DO NOTHING
	`, owner.Bytes())
	if err != nil {
		return fmt.Errorf("create registry state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create registry state: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (t *postgresTx) SaveVerification(ctx context.Context, address id.WalletAddress, record models.VerificationRecord) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO wallet_verifications (address, risk_score, risk_level, verified_at, verified_by, is_sanctioned)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			risk_level = EXCLUDED.risk_level,
			verified_at = EXCLUDED.verified_at,
			verified_by = EXCLUDED.verified_by,
			is_sanctioned = EXCLUDED.is_sanctioned
	`,
		address.Bytes(),
		int16(record.RiskScore),
		record.RiskLevel.String(),
		record.VerifiedAt,
		record.VerifiedBy.Bytes(),
		record.IsSanctioned,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgCheckViolation {
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "verification violates registry constraint")
		}
		return fmt.Errorf("save verification: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, VerificationChannel, address.String()); err != nil {
		return fmt.Errorf("notify verification: %w", err)
	}
	return nil
}

// AdvanceState never moves last_verified_at backwards; GREATEST skips the
// NULL left by a fresh registry.
func (t *postgresTx) AdvanceState(ctx context.Context, applied uint64, lastVerifiedAt time.Time) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE registry_state
		SET total_verifications = total_verifications + $1,
			last_verified_at = GREATEST(last_verified_at, $2)
		WHERE id = 1
	`, int64(applied), lastVerifiedAt)
	if err != nil {
		return fmt.Errorf("advance registry state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance registry state: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type verificationRow struct {
	riskScore    int16
	riskLevel    string
	verifiedAt   time.Time
	verifiedBy   []byte
	isSanctioned bool
}

func (r verificationRow) toRecord() (models.VerificationRecord, error) {
	level, err := models.ParseRiskLevel(r.riskLevel)
	if err != nil {
		return models.VerificationRecord{}, fmt.Errorf("decode risk level: %w", err)
	}
	verifier, err := id.AccountIDFromBytes(r.verifiedBy)
	if err != nil {
		return models.VerificationRecord{}, fmt.Errorf("decode verifier: %w", err)
	}
	return models.VerificationRecord{
		RiskScore:    uint8(r.riskScore),
		RiskLevel:    level,
		VerifiedAt:   r.verifiedAt.UTC(),
		VerifiedBy:   verifier,
		IsSanctioned: r.isSanctioned,
	}, nil
}

func scanState(row *sql.Row) (*models.RegistryState, error) {
	var (
		owner     []byte
		total     int64
		lastStamp sql.NullTime
	)
	if err := row.Scan(&owner, &total, &lastStamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load registry state: %w", err)
	}
	ownerID, err := id.AccountIDFromBytes(owner)
	if err != nil {
		return nil, fmt.Errorf("decode registry owner: %w", err)
	}
	state := &models.RegistryState{Owner: ownerID, TotalVerifications: uint64(total)}
	if lastStamp.Valid {
		state.LastVerifiedAt = lastStamp.Time.UTC()
	}
	return state, nil
}
