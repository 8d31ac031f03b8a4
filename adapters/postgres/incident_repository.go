package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"incidentscope/domain/core"
	"incidentscope/domain/incident"
)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	id           TEXT PRIMARY KEY,
	source_path  TEXT NOT NULL,
	file_size    BIGINT NOT NULL DEFAULT 0,
	record_count INTEGER NOT NULL DEFAULT 0,
	loaded_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS incidents (
	id                       BIGSERIAL PRIMARY KEY,
	dataset_id               TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	incident_number          TEXT,
	alarm_datetime           TIMESTAMPTZ,
	arrival_datetime         TIMESTAMPTZ,
	controlled_datetime      TIMESTAMPTZ,
	incident_type            TEXT,
	incident_main_type       TEXT,
	incident_category        TEXT,
	city                     TEXT,
	zip_code                 TEXT,
	place_type               TEXT,
	latitude                 DOUBLE PRECISION,
	longitude                DOUBLE PRECISION,
	response_time_minutes    DOUBLE PRECISION,
	control_time_minutes     DOUBLE PRECISION,
	total_time_minutes       DOUBLE PRECISION,
	units_responded          DOUBLE PRECISION,
	total_casualties         DOUBLE PRECISION,
	transport_disposition    TEXT,
	patient_care_evaluation  TEXT
);

CREATE INDEX IF NOT EXISTS idx_incidents_dataset ON incidents(dataset_id);
CREATE INDEX IF NOT EXISTS idx_incidents_alarm ON incidents(alarm_datetime);
CREATE INDEX IF NOT EXISTS idx_incidents_main_type ON incidents(incident_main_type);
CREATE INDEX IF NOT EXISTS idx_incidents_city ON incidents(city);
`

// IncidentRepository archives incident datasets in Postgres
type IncidentRepository struct {
	db *sqlx.DB
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// EnsureSchema creates the archive tables when missing.
func (r *IncidentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ArchiveDataset stores a dataset header and bulk-copies its records inside
// one transaction. Missing values are archived as NULL.
func (r *IncidentRepository) ArchiveDataset(ctx context.Context, ds *incident.Dataset) error {
	start := time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, source_path, file_size, record_count, loaded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			source_path = EXCLUDED.source_path,
			file_size = EXCLUDED.file_size,
			record_count = EXCLUDED.record_count,
			loaded_at = EXCLUDED.loaded_at`,
		ds.ID, ds.SourcePath, ds.FileSize, len(ds.Records), ds.LoadedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive dataset header: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM incidents WHERE dataset_id = $1`, ds.ID); err != nil {
		return fmt.Errorf("failed to clear previous archive: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("incidents",
		"dataset_id", "incident_number", "alarm_datetime", "arrival_datetime",
		"controlled_datetime", "incident_type", "incident_main_type",
		"incident_category", "city", "zip_code", "place_type",
		"latitude", "longitude", "response_time_minutes", "control_time_minutes",
		"total_time_minutes", "units_responded", "total_casualties",
		"transport_disposition", "patient_care_evaluation"))
	if err != nil {
		return fmt.Errorf("failed to prepare bulk copy: %w", err)
	}

	for i := range ds.Records {
		in := &ds.Records[i]
		_, err := stmt.ExecContext(ctx,
			string(ds.ID), nullString(in.Number), nullTime(in.Alarm), nullTime(in.Arrival),
			nullTime(in.Controlled), nullString(in.Type), nullString(in.MainType),
			nullString(in.Category), nullString(in.City), nullString(in.ZipCode), nullString(in.PlaceType),
			nullFloat(in.Latitude), nullFloat(in.Longitude), nullFloat(in.ResponseMinutes),
			nullFloat(in.ControlMinutes), nullFloat(in.TotalMinutes), nullFloat(in.UnitsResponded),
			nullFloat(in.TotalCasualties), nullString(in.TransportDisposition),
			nullString(in.PatientCareEvaluation),
		)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy incident %s: %w", in.Number, err)
		}
	}

	// Flush the copy stream
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush bulk copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close bulk copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}

	log.Printf("[IncidentRepository] archived %d incidents for dataset %s in %.2fms",
		len(ds.Records), ds.ID, float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// CountByDataset returns the number of archived incidents for a dataset.
func (r *IncidentRepository) CountByDataset(ctx context.Context, id core.DatasetID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM incidents WHERE dataset_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return count, nil
}

// LatestDataset returns the ID of the most recently archived dataset.
func (r *IncidentRepository) LatestDataset(ctx context.Context) (core.DatasetID, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM datasets ORDER BY loaded_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no datasets archived")
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest dataset: %w", err)
	}
	return core.DatasetID(id), nil
}

// buildFilterQuery assembles the filtered select with positional parameters.
// The To bound is exclusive of the following day, matching the dashboard's
// date-window semantics.
func buildFilterQuery(id core.DatasetID, f incident.Filter, limit int) (string, []interface{}) {
	var (
		clauses = []string{"dataset_id = $1"}
		args    = []interface{}{string(id)}
	)
	addClause := func(condition string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(condition, len(args)))
	}

	if !f.From.IsZero() {
		addClause("alarm_datetime >= $%d", f.From)
	}
	if !f.To.IsZero() {
		addClause("alarm_datetime < $%d", f.To.AddDate(0, 0, 1))
	}
	if f.MainType != "" {
		addClause("incident_main_type = $%d", f.MainType)
	}
	if f.City != "" {
		addClause("city = $%d", f.City)
	}
	if f.MaxResponseMinutes > 0 {
		addClause("response_time_minutes <= $%d", f.MaxResponseMinutes)
	}
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT
			COALESCE(incident_number, ''), alarm_datetime,
			COALESCE(incident_type, ''), COALESCE(incident_main_type, ''),
			COALESCE(city, ''), COALESCE(place_type, ''),
			response_time_minutes, control_time_minutes, units_responded, total_casualties
		FROM incidents
		WHERE %s
		ORDER BY alarm_datetime DESC NULLS LAST
		LIMIT $%d`, strings.Join(clauses, " AND "), len(args))
	return query, args
}

// QueryFiltered retrieves archived incidents matching a filter, newest first.
func (r *IncidentRepository) QueryFiltered(ctx context.Context, id core.DatasetID, f incident.Filter, limit int) ([]incident.Incident, error) {
	query, args := buildFilterQuery(id, f, limit)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var records []incident.Incident
	for rows.Next() {
		var (
			in         incident.Incident
			alarm      sql.NullTime
			response   sql.NullFloat64
			control    sql.NullFloat64
			units      sql.NullFloat64
			casualties sql.NullFloat64
		)
		err := rows.Scan(&in.Number, &alarm, &in.Type, &in.MainType, &in.City, &in.PlaceType,
			&response, &control, &units, &casualties)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		if alarm.Valid {
			in.Alarm = alarm.Time.UTC()
		}
		in.ResponseMinutes = floatOrNaN(response)
		in.ControlMinutes = floatOrNaN(control)
		in.UnitsResponded = floatOrNaN(units)
		in.TotalCasualties = floatOrNaN(casualties)
		in.Latitude = math.NaN()
		in.Longitude = math.NaN()
		in.TotalMinutes = math.NaN()
		in.Derive()
		records = append(records, in)
	}
	return records, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
