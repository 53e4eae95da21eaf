package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/registration-service/internal/domain"
)

// Sentinel errors surfaced by repositories.
var (
	ErrNotFound   = errors.New("registration not found")
	ErrCodeTaken  = errors.New("unique code already assigned")
	ErrNotPending = errors.New("registration is not pending")
)

const pgUniqueViolation = "23505"

// RegistrationRepository defines persistence access for registration records.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Registration, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	// Approve transitions a pending registration to approved with the given
	// code. It fails with ErrCodeTaken when the code is already assigned to
	// any record, closing the race between a uniqueness pre-check and the
	// write, and with ErrNotPending when the record has already left pending.
	Approve(ctx context.Context, id, code, operator string) error
	// Reject writes status=rejected unconditionally; re-rejecting is a no-op
	// write that still succeeds.
	Reject(ctx context.Context, id string) error
	SetTelegramMessageID(ctx context.Context, id string, messageID int) error
}

type registrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository returns a Postgres-backed implementation.
func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

const registrationColumns = `
        id, first_name, last_name, national_id, phone, status,
        unique_code, approved_at, approved_by, telegram_message_id,
        submitter_ip, created_at`

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (id, first_name, last_name, national_id, phone, status, submitter_ip)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		reg.ID,
		reg.FirstName,
		reg.LastName,
		reg.NationalID,
		reg.Phone,
		reg.Status,
		reg.SubmitterIP,
	).Scan(&reg.CreatedAt)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	const query = `SELECT` + registrationColumns + ` FROM registrations WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *registrationRepository) GetByPhone(ctx context.Context, phone string) (*domain.Registration, error) {
	const query = `SELECT` + registrationColumns + ` FROM registrations WHERE phone=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, phone))
}

func (r *registrationRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM registrations WHERE unique_code=$1)`

	var inUse bool
	if err := r.pool.QueryRow(ctx, query, code).Scan(&inUse); err != nil {
		return false, err
	}
	return inUse, nil
}

func (r *registrationRepository) Approve(ctx context.Context, id, code, operator string) error {
	const query = `
        UPDATE registrations
        SET status=$1, unique_code=$2, approved_at=NOW(), approved_by=$3
        WHERE id=$4 AND status=$5`

	cmd, err := r.pool.Exec(ctx, query, domain.StatusApproved, code, operator, id, domain.StatusPending)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrCodeTaken
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Distinguish a missing record from one that already left pending.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNotPending
	}
	return nil
}

func (r *registrationRepository) Reject(ctx context.Context, id string) error {
	const query = `UPDATE registrations SET status=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, domain.StatusRejected, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *registrationRepository) SetTelegramMessageID(ctx context.Context, id string, messageID int) error {
	const query = `UPDATE registrations SET telegram_message_id=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, messageID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *registrationRepository) scanOne(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	if err := row.Scan(
		&reg.ID,
		&reg.FirstName,
		&reg.LastName,
		&reg.NationalID,
		&reg.Phone,
		&reg.Status,
		&reg.UniqueCode,
		&reg.ApprovedAt,
		&reg.ApprovedBy,
		&reg.TelegramMessageID,
		&reg.SubmitterIP,
		&reg.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}
