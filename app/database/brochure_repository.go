package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// SQLBrochureRepository handles database operations for brochures
type SQLBrochureRepository struct {
	db *DB
}

var _ BrochureRepository = (*SQLBrochureRepository)(nil)

// NewBrochureRepository creates a new brochure repository
func NewBrochureRepository(db *DB) *SQLBrochureRepository {
	return &SQLBrochureRepository{db: db}
}

// Insert stores a new brochure row. The ID is generated here; expires_at
// is fixed at insert time and never recomputed.
func (r *SQLBrochureRepository) Insert(b Brochure) (string, error) {
	id := uuid.New().String()

	_, err := r.db.Exec(`
		INSERT INTO brochures (id, store_name, source_url, pdf_url, file_name, uploaded_at, expires_at, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, b.StoreName, b.SourceURL, b.PDFURL, b.FileName,
		b.UploadedAt.UTC(), b.ExpiresAt.UTC(), b.Archived)

	if err != nil {
		return "", fmt.Errorf("failed to insert brochure: %w", err)
	}

	return id, nil
}

// GetByID retrieves a brochure by its ID, nil when not found
func (r *SQLBrochureRepository) GetByID(id string) (*Brochure, error) {
	b, err := r.scanOne(r.db.QueryRow(`
		SELECT id, store_name, source_url, pdf_url, file_name, uploaded_at, expires_at, archived, created_at
		FROM brochures
		WHERE id = ?
	`, id))

	if err != nil {
		return nil, fmt.Errorf("failed to get brochure by ID: %w", err)
	}
	return b, nil
}

// GetBySourceURL retrieves a brochure by its retailer source page URL,
// regardless of archived state. This is the dedup lookup: a source URL
// that was ever ingested for a store is never ingested again.
func (r *SQLBrochureRepository) GetBySourceURL(storeName, sourceURL string) (*Brochure, error) {
	b, err := r.scanOne(r.db.QueryRow(`
		SELECT id, store_name, source_url, pdf_url, file_name, uploaded_at, expires_at, archived, created_at
		FROM brochures
		WHERE store_name = ? AND source_url = ?
	`, storeName, sourceURL))

	if err != nil {
		return nil, fmt.Errorf("failed to get brochure by source URL: %w", err)
	}
	return b, nil
}

// List returns brochures newest-first. Archived rows are excluded unless
// requested; the store filter is a case-insensitive substring match using
// Unicode case folding.
func (r *SQLBrochureRepository) List(filter ListFilter) ([]Brochure, error) {
	query := `
		SELECT id, store_name, source_url, pdf_url, file_name, uploaded_at, expires_at, archived, created_at
		FROM brochures
	`
	if !filter.IncludeArchived {
		query += " WHERE archived = FALSE"
	}
	query += " ORDER BY uploaded_at DESC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list brochures: %w", err)
	}
	defer rows.Close()

	brochures, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}

	if filter.Store == "" {
		return brochures, nil
	}

	folder := cases.Fold()
	needle := folder.String(filter.Store)
	filtered := make([]Brochure, 0, len(brochures))
	for _, b := range brochures {
		if strings.Contains(folder.String(b.StoreName), needle) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// ListActive returns all non-archived brochures for one store.
// Input for the orchestrator's archive-diff step.
func (r *SQLBrochureRepository) ListActive(storeName string) ([]Brochure, error) {
	rows, err := r.db.Query(`
		SELECT id, store_name, source_url, pdf_url, file_name, uploaded_at, expires_at, archived, created_at
		FROM brochures
		WHERE store_name = ? AND archived = FALSE
		ORDER BY uploaded_at DESC
	`, storeName)
	if err != nil {
		return nil, fmt.Errorf("failed to list active brochures: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ArchiveByIDs marks the given brochures as archived. The transition is
// one-way; already-archived rows are untouched.
func (r *SQLBrochureRepository) ArchiveByIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := r.db.Exec(`
		UPDATE brochures
		SET archived = TRUE
		WHERE archived = FALSE AND id IN (`+placeholders+`)
	`, args...)

	if err != nil {
		return fmt.Errorf("failed to archive brochures: %w", err)
	}

	return nil
}

// ArchiveExpired marks every non-archived brochure past its expiration
// as archived and returns the affected IDs. Idempotent: a second run
// finds nothing to update.
func (r *SQLBrochureRepository) ArchiveExpired(now time.Time) ([]string, error) {
	rows, err := r.db.Query(`
		UPDATE brochures
		SET archived = TRUE
		WHERE archived = FALSE AND expires_at < ?
		RETURNING id
	`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to archive expired brochures: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan archived ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archived IDs: %w", err)
	}

	return ids, nil
}

// GetBrochureCount returns the total number of brochures
func (r *SQLBrochureRepository) GetBrochureCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM brochures").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get brochure count: %w", err)
	}
	return count, nil
}

// GetActiveBrochureCount returns the count of non-archived brochures
func (r *SQLBrochureRepository) GetActiveBrochureCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM brochures WHERE archived = FALSE").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get active brochure count: %w", err)
	}
	return count, nil
}

func (r *SQLBrochureRepository) scanOne(row *sql.Row) (*Brochure, error) {
	var b Brochure
	err := row.Scan(
		&b.ID, &b.StoreName, &b.SourceURL, &b.PDFURL, &b.FileName,
		&b.UploadedAt, &b.ExpiresAt, &b.Archived, &b.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *SQLBrochureRepository) scanAll(rows *sql.Rows) ([]Brochure, error) {
	var brochures []Brochure
	for rows.Next() {
		var b Brochure
		err := rows.Scan(
			&b.ID, &b.StoreName, &b.SourceURL, &b.PDFURL, &b.FileName,
			&b.UploadedAt, &b.ExpiresAt, &b.Archived, &b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brochure row: %w", err)
		}
		brochures = append(brochures, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brochure rows: %w", err)
	}

	return brochures, nil
}
