package dispatch

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

const caseCols = `id, crew_name, vitals_snapshot, symptoms_snapshot, ai_prediction, is_critical,
	mews_score, vitals_trend, origin_address, hospital_name, hospital_specialty,
	distance_km, simulated_eta_min, acceptance_status, rejected_history, created_at, updated_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.CrewName, &c.VitalsSnapshot, &c.Symptoms, &c.AIPrediction, &c.IsCritical,
		&c.MEWSScore, &c.VitalsTrend, &c.OriginAddress, &c.HospitalName, &c.HospitalSpecialty,
		&c.DistanceKm, &c.SimulatedETAMin, &c.AcceptanceStatus, &c.RejectedHistory, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Case) error {
	if c.RejectedHistory == nil {
		c.RejectedHistory = []string{}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO dispatch_case (crew_name, vitals_snapshot, symptoms_snapshot, ai_prediction, is_critical,
			mews_score, vitals_trend, origin_address, hospital_name, hospital_specialty,
			distance_km, simulated_eta_min, acceptance_status, rejected_history)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`,
		c.CrewName, c.VitalsSnapshot, c.Symptoms, c.AIPrediction, c.IsCritical,
		c.MEWSScore, c.VitalsTrend, c.OriginAddress, c.HospitalName, c.HospitalSpecialty,
		c.DistanceKm, c.SimulatedETAMin, c.AcceptanceStatus, c.RejectedHistory).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Case, error) {
	return scanCase(r.db.QueryRow(ctx, `SELECT `+caseCols+` FROM dispatch_case WHERE id = $1`, id))
}

func (r *repoPG) UpdateRouting(ctx context.Context, c *Case) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE dispatch_case SET hospital_name=$2, hospital_specialty=$3, distance_km=$4,
			simulated_eta_min=$5, acceptance_status=$6, rejected_history=$7, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.HospitalName, c.HospitalSpecialty, c.DistanceKm,
		c.SimulatedETAMin, c.AcceptanceStatus, c.RejectedHistory)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetAcceptanceStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE dispatch_case SET acceptance_status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit int) ([]*Case, error) {
	rows, err := r.db.Query(ctx, `SELECT `+caseCols+` FROM dispatch_case ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM dispatch_case`).Scan(&total)
	return total, err
}
