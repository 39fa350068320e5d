package submissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hairalyzer-backend/internal/analyses"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const submissionColumns = `id, user_id, hair_problem, allergies, medication, dyed, wash_frequency,
       additional_concerns, product_names, hair_photo_urls, product_photo_urls,
       product_photo_analyses, analysis, created_at, updated_at`

// Create inserts a new submission in a single statement.
func (r *PGRepo) Create(ctx context.Context, s Submission) (Submission, error) {
	const query = `
INSERT INTO submissions (
	id, user_id, hair_problem, allergies, medication, dyed, wash_frequency,
	additional_concerns, product_names, hair_photo_urls, product_photo_urls,
	product_photo_analyses, analysis, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	s = s.normalize()
	payloads, err := marshalJSONB(s.ProductNames, s.HairPhotoURLs, s.ProductPhotoURLs, s.ProductPhotoAnalyses, s.Analysis)
	if err != nil {
		return Submission{}, err
	}
	_, err = r.DB.ExecContext(ctx, query,
		s.ID,
		nullString(s.UserID),
		s.HairProblem,
		s.Allergies,
		s.Medication,
		s.Dyed,
		s.WashFrequency,
		s.AdditionalConcerns,
		payloads[0],
		payloads[1],
		payloads[2],
		payloads[3],
		payloads[4],
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return s, nil
}

// GetByID returns a submission by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 LIMIT 1`
	s, err := scanSubmission(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

// ListByUser returns the user's submissions, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Submission, error) {
	query := `SELECT ` + submissionColumns + `
FROM submissions
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectSubmissions(rows)
}

// UpdateAnalysis rewrites the analysis column only.
func (r *PGRepo) UpdateAnalysis(ctx context.Context, id string, a analyses.Analysis, updatedAt time.Time) error {
	const query = `UPDATE submissions SET analysis = $2, updated_at = $3 WHERE id = $1`
	payloads, err := marshalJSONB(a.Normalize())
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, id, payloads[0], updatedAt)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrNotFound)
}

// AssignOwner claims an ownerless submission for userID.
func (r *PGRepo) AssignOwner(ctx context.Context, id, userID string, updatedAt time.Time) error {
	const query = `
UPDATE submissions SET user_id = $2, updated_at = $3
WHERE id = $1 AND (user_id IS NULL OR user_id = '')`
	res, err := r.DB.ExecContext(ctx, query, id, userID, updatedAt)
	if err != nil {
		return err
	}
	if err := requireAffected(res, ErrOwnerConflict); err != nil {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// List pages through all submissions oldest first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Submission, error) {
	query := `SELECT ` + submissionColumns + `
FROM submissions
ORDER BY created_at ASC, id ASC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectSubmissions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var s Submission
	var userID sql.NullString
	var productNames, hairURLs, productURLs, productAnalyses, analysis []byte
	if err := row.Scan(
		&s.ID,
		&userID,
		&s.HairProblem,
		&s.Allergies,
		&s.Medication,
		&s.Dyed,
		&s.WashFrequency,
		&s.AdditionalConcerns,
		&productNames,
		&hairURLs,
		&productURLs,
		&productAnalyses,
		&analysis,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return Submission{}, err
	}
	s.UserID = userID.String
	if err := unmarshalJSONB(
		jsonTarget{productNames, &s.ProductNames},
		jsonTarget{hairURLs, &s.HairPhotoURLs},
		jsonTarget{productURLs, &s.ProductPhotoURLs},
		jsonTarget{productAnalyses, &s.ProductPhotoAnalyses},
		jsonTarget{analysis, &s.Analysis},
	); err != nil {
		return Submission{}, err
	}
	return s.normalize(), nil
}

func collectSubmissions(rows *sql.Rows) ([]Submission, error) {
	defer rows.Close()
	out := []Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func marshalJSONB(values ...any) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal jsonb: %w", err)
		}
		out[i] = b
	}
	return out, nil
}

type jsonTarget struct {
	raw  []byte
	dest any
}

func unmarshalJSONB(targets ...jsonTarget) error {
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dest); err != nil {
			return fmt.Errorf("unmarshal jsonb: %w", err)
		}
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func requireAffected(res sql.Result, errNone error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNone
	}
	return nil
}
