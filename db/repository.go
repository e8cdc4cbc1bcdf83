package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record kinds.
const (
	KindGenerate = "generate"
	KindProcess  = "process"
)

// Record statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("db: record not found")

// TextureRecord is one pipeline run in the textures table.
type TextureRecord struct {
	ID             int64
	JobID          string
	Kind           string // KindGenerate or KindProcess
	Prompt         string
	NegativePrompt string
	Backend        string
	Model          string
	Width          int // Requested size
	Height         int
	ActualWidth    int // Size of the saved texture
	ActualHeight   int
	Steps          int
	Guidance       float64
	Seed           *int64 // nil when the backend reports none
	Retried        bool   // Generation was retried at the fallback size
	Stages         []string
	Palette        []string // "#rrggbb" entries when flattened
	InputPath      string   // Source image for KindProcess
	OutputPath     string
	Status         string
	ErrorMessage   string
	Duration       time.Duration
	CreatedAt      time.Time
}

// Repository reads and writes texture records.
type Repository struct {
	db *Database
}

// NewRepository creates a repository on an open database.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db}
}

const textureColumns = `id, job_id, kind, COALESCE(prompt, ''), COALESCE(negative_prompt, ''),
	COALESCE(backend, ''), COALESCE(model, ''), width, height, actual_width, actual_height,
	steps, guidance, seed, retried, COALESCE(stages, ''), COALESCE(palette, ''),
	COALESCE(input_path, ''), COALESCE(output_path, ''), status, COALESCE(error_message, ''),
	duration_ms, created_at`

// Insert stores rec and returns its id. A zero CreatedAt is set to now.
func (r *Repository) Insert(ctx context.Context, rec TextureRecord) (int64, error) {
	if r.db == nil || r.db.DB() == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	if rec.JobID == "" || rec.Status == "" {
		return 0, fmt.Errorf("job id and status are required")
	}
	if rec.Kind == "" {
		rec.Kind = KindGenerate
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var seed sql.NullInt64
	if rec.Seed != nil {
		seed = sql.NullInt64{Int64: *rec.Seed, Valid: true}
	}

	result, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO textures (
			job_id, kind, prompt, negative_prompt, backend, model,
			width, height, actual_width, actual_height, steps, guidance, seed, retried,
			stages, palette, input_path, output_path, status, error_message,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID, rec.Kind, nullString(rec.Prompt), nullString(rec.NegativePrompt),
		nullString(rec.Backend), nullString(rec.Model),
		rec.Width, rec.Height, rec.ActualWidth, rec.ActualHeight, rec.Steps, rec.Guidance,
		seed, rec.Retried,
		nullString(strings.Join(rec.Stages, ",")), nullString(strings.Join(rec.Palette, ",")),
		nullString(rec.InputPath), nullString(rec.OutputPath), rec.Status, nullString(rec.ErrorMessage),
		rec.Duration.Milliseconds(), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert texture record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// means 10.
func (r *Repository) Recent(ctx context.Context, limit int) ([]TextureRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.query(ctx, `SELECT `+textureColumns+` FROM textures ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// ByJobID returns the record of one job or ErrNotFound.
func (r *Repository) ByJobID(ctx context.Context, jobID string) (*TextureRecord, error) {
	records, err := r.query(ctx, `SELECT `+textureColumns+` FROM textures WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	return &records[0], nil
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	if r.db == nil || r.db.DB() == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var n int64
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM textures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count texture records: %w", err)
	}
	return n, nil
}

// Prune deletes records created before cutoff and returns how many were
// removed. Texture files on disk are left alone.
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.db == nil || r.db.DB() == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	result, err := r.db.DB().ExecContext(ctx, `DELETE FROM textures WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune texture records: %w", err)
	}
	return result.RowsAffected()
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]TextureRecord, error) {
	if r.db == nil || r.db.DB() == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query texture records: %w", err)
	}
	defer rows.Close()

	var records []TextureRecord
	for rows.Next() {
		var (
			rec        TextureRecord
			seed       sql.NullInt64
			stages     string
			palette    string
			durationMS int64
			createdAt  int64
		)
		err := rows.Scan(
			&rec.ID, &rec.JobID, &rec.Kind, &rec.Prompt, &rec.NegativePrompt,
			&rec.Backend, &rec.Model, &rec.Width, &rec.Height, &rec.ActualWidth, &rec.ActualHeight,
			&rec.Steps, &rec.Guidance, &seed, &rec.Retried, &stages, &palette,
			&rec.InputPath, &rec.OutputPath, &rec.Status, &rec.ErrorMessage,
			&durationMS, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan texture record: %w", err)
		}

		if seed.Valid {
			v := seed.Int64
			rec.Seed = &v
		}
		rec.Stages = splitList(stages)
		rec.Palette = splitList(palette)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating texture records: %w", err)
	}

	return records, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
