package crew

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{db: pool} }

func (r *repoPG) Create(ctx context.Context, c *Crew) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO crew_member (crew_name, password_hash, hospital_name, hospital_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		c.CrewName, c.PasswordHash, c.HospitalName, c.HospitalID).Scan(&c.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByName(ctx context.Context, crewName string) (*Crew, error) {
	var c Crew
	err := r.db.QueryRow(ctx, `
		SELECT crew_name, password_hash, hospital_name, hospital_id, created_at
		FROM crew_member WHERE crew_name = $1`, crewName).
		Scan(&c.CrewName, &c.PasswordHash, &c.HospitalName, &c.HospitalID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM crew_member`).Scan(&total)
	return total, err
}
