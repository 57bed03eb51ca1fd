package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workshop/src/core/domain"
	"workshop/src/core/ports"
	"workshop/src/infra/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var _ ports.WorkshopRepository = (*WorkshopRepository)(nil)

// WorkshopRepository implements ports.WorkshopRepository using pgx.
type WorkshopRepository struct {
	pg   *db.Postgres
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewWorkshopRepository constructs a repository backed by Postgres.
func NewWorkshopRepository(pg *db.Postgres, log *slog.Logger) *WorkshopRepository {
	return &WorkshopRepository{
		pg:   pg,
		pool: pg.Pool,
		log:  log,
	}
}

// Health delegates to the bounded ping of the underlying pool.
func (r *WorkshopRepository) Health(ctx context.Context) error {
	return r.pg.Health(ctx)
}

func mechanicByCodeQuery(code string) (string, []any, error) {
	return psql.
		Select("id", "mechanic_code", "email", "number", "created_on").
		From("mechanics").
		Where(sq.Eq{"mechanic_code": code}).
		ToSql()
}

func serviceRequestsByVINQuery(vin string) (string, []any, error) {
	return psql.
		Select(
			"sr.id", "sr.problem_details", "sr.status", "sr.created_on", "sr.updated_on",
			"m.id", "m.mechanic_code", "m.email", "m.number", "m.created_on",
			"v.id", "v.vin", "v.pincode", "v.year", "v.status",
			"u.id", "u.email", "u.number",
		).
		From("service_requests sr").
		Join("mechanics m ON m.id = sr.mechanic_id").
		Join("vehicles v ON v.id = sr.vehicle_id").
		LeftJoin("users u ON u.id = v.owner_id").
		Where(sq.Eq{"v.vin": vin}).
		OrderBy("sr.created_on DESC", "sr.id DESC").
		ToSql()
}

func (r *WorkshopRepository) GetMechanicByCode(ctx context.Context, code string) (*domain.Mechanic, error) {
	q, args, err := mechanicByCodeQuery(code)
	if err != nil {
		return nil, fmt.Errorf("build mechanic query: %w", err)
	}

	var m domain.Mechanic
	if err := r.pool.QueryRow(ctx, q, args...).Scan(
		&m.ID, &m.MechanicCode, &m.Email, &m.Number, &m.CreatedOn,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("mechanic")
		}
		return nil, err
	}
	return &m, nil
}

func (r *WorkshopRepository) ListServiceRequestsByVIN(ctx context.Context, vin string) ([]domain.ServiceRequest, error) {
	q, args, err := serviceRequestsByVINQuery(vin)
	if err != nil {
		return nil, fmt.Errorf("build service request query: %w", err)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ServiceRequest, 0)
	for rows.Next() {
		sr, err := scanServiceRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.log.Debug("service requests loaded", "vin", vin, "count", len(out))
	return out, nil
}

func scanServiceRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var (
		sr        domain.ServiceRequest
		m         domain.Mechanic
		v         domain.Vehicle
		status    string
		updatedOn *time.Time

		ownerID     *int64
		ownerEmail  *string
		ownerNumber *string
	)
	if err := row.Scan(
		&sr.ID, &sr.ProblemDetails, &status, &sr.CreatedOn, &updatedOn,
		&m.ID, &m.MechanicCode, &m.Email, &m.Number, &m.CreatedOn,
		&v.ID, &v.VIN, &v.PinCode, &v.Year, &v.Status,
		&ownerID, &ownerEmail, &ownerNumber,
	); err != nil {
		return nil, err
	}

	if ownerID != nil {
		v.Owner = &domain.Owner{
			ID:     *ownerID,
			Email:  deref(ownerEmail),
			Number: deref(ownerNumber),
		}
	}

	sr.Status = domain.ServiceStatus(status)
	if !sr.Status.Valid() {
		return nil, domain.NewIntegrityError(fmt.Sprintf("service request %d has unknown status %q", sr.ID, status))
	}
	sr.UpdatedOn = updatedOn
	sr.Mechanic = &m
	sr.Vehicle = &v
	return &sr, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
