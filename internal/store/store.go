// Package store persists forms and submissions in SQLite through
// database/sql. The store owns the counter semantics: visit and
// submission increments are atomic, and submission acceptance couples
// the counter increment and the submission row in one transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formforge/formforge/internal/types"
)

var (
	// ErrNotFound means the referenced form does not resolve under the
	// caller's scope. It is terminal; callers never substitute a default.
	ErrNotFound = errors.New("store: not found")
	// ErrNotPublished means a submission targeted a form that exists but
	// has not been published.
	ErrNotPublished = errors.New("store: form not published")
)

// Store is the persistence contract consumed by the handlers and the
// designer wire layer. Owner-scoped operations take the resolved user id
// from the identity provider; the store never sees credentials.
type Store interface {
	Migrate(ctx context.Context) error

	CreateForm(ctx context.Context, ownerID, name, description string) (*types.Form, error)
	ListForms(ctx context.Context, ownerID string) ([]*types.Form, error)
	GetForm(ctx context.Context, ownerID, id string) (*types.Form, error)
	GetFormWithSubmissions(ctx context.Context, ownerID, id string) (*types.Form, []*types.Submission, error)
	UpdateFormContent(ctx context.Context, ownerID, id, content string) error
	PublishForm(ctx context.Context, ownerID, id string) error

	// GetFormContentByShareToken returns the form's layout and atomically
	// increments its visit counter in the same statement. The increment is
	// not gated on publication state.
	GetFormContentByShareToken(ctx context.Context, token string) (string, error)
	// GetFormByShareToken fetches without touching counters. Used when
	// validating a submission against the saved layout.
	GetFormByShareToken(ctx context.Context, token string) (*types.Form, error)
	// SubmitForm records an accepted submission: exactly one submissions
	// increment and exactly one submission row, in one transaction. Fails
	// with ErrNotFound for unknown tokens and ErrNotPublished for
	// unpublished forms, in both cases leaving the counter untouched.
	SubmitForm(ctx context.Context, token, content string) error

	FormStats(ctx context.Context, ownerID string) (*types.FormStats, error)
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an open database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the schema. Idempotent; run at startup.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forms (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content     TEXT NOT NULL DEFAULT '[]',
			published   INTEGER NOT NULL DEFAULT 0,
			share_url   TEXT NOT NULL UNIQUE,
			visits      INTEGER NOT NULL DEFAULT 0,
			submissions INTEGER NOT NULL DEFAULT 0,
			created_at  TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_forms_owner_created
			ON forms (owner_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS submissions (
			id         TEXT PRIMARY KEY,
			form_id    TEXT NOT NULL REFERENCES forms (id),
			content    TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_submissions_form
			ON submissions (form_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

const formColumns = `id, owner_id, name, description, content, published, share_url, visits, submissions, created_at`

func scanForm(row interface{ Scan(...any) error }) (*types.Form, error) {
	var f types.Form
	err := row.Scan(
		&f.ID, &f.OwnerID, &f.Name, &f.Description, &f.Content,
		&f.Published, &f.ShareURL, &f.Visits, &f.Submissions, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateForm inserts a new unpublished form with a fresh id and share
// token. The share token is assigned once here and never changes.
func (s *SQLiteStore) CreateForm(ctx context.Context, ownerID, name, description string) (*types.Form, error) {
	f := &types.Form{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Content:     "[]",
		ShareURL:    uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forms (id, owner_id, name, description, content, published, share_url, visits, submissions, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, 0, 0, ?)`,
		f.ID, f.OwnerID, f.Name, f.Description, f.Content, f.ShareURL, f.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting form: %w", err)
	}
	return f, nil
}

// ListForms returns the owner's forms, newest first.
func (s *SQLiteStore) ListForms(ctx context.Context, ownerID string) ([]*types.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+formColumns+` FROM forms
		WHERE owner_id = ?
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying forms: %w", err)
	}
	defer rows.Close()

	var forms []*types.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// GetForm fetches one form under the owner's scope.
func (s *SQLiteStore) GetForm(ctx context.Context, ownerID, id string) (*types.Form, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+formColumns+` FROM forms
		WHERE owner_id = ? AND id = ?`, ownerID, id)
	f, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying form: %w", err)
	}
	return f, nil
}

// GetFormWithSubmissions fetches a form and all its submissions, oldest
// submission first.
func (s *SQLiteStore) GetFormWithSubmissions(ctx context.Context, ownerID, id string) (*types.Form, []*types.Submission, error) {
	f, err := s.GetForm(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, content, created_at FROM submissions
		WHERE form_id = ?
		ORDER BY created_at`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var subs []*types.Submission
	for rows.Next() {
		var sub types.Submission
		if err := rows.Scan(&sub.ID, &sub.FormID, &sub.Content, &sub.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("scanning submission: %w", err)
		}
		subs = append(subs, &sub)
	}
	return f, subs, rows.Err()
}

// UpdateFormContent replaces the serialized layout.
func (s *SQLiteStore) UpdateFormContent(ctx context.Context, ownerID, id, content string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE forms SET content = ?
		WHERE owner_id = ? AND id = ?`, content, ownerID, id)
	if err != nil {
		return fmt.Errorf("updating form content: %w", err)
	}
	return oneRowOrNotFound(res)
}

// PublishForm flips published to true. The transition is one-way; there
// is no unpublish.
func (s *SQLiteStore) PublishForm(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE forms SET published = 1
		WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("publishing form: %w", err)
	}
	return oneRowOrNotFound(res)
}

// GetFormContentByShareToken increments visits and returns the layout in
// one statement, so concurrent view-fetches each count exactly once.
func (s *SQLiteStore) GetFormContentByShareToken(ctx context.Context, token string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		UPDATE forms SET visits = visits + 1
		WHERE share_url = ?
		RETURNING content`, token).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetching form content: %w", err)
	}
	return content, nil
}

// GetFormByShareToken fetches by token without counter side effects.
func (s *SQLiteStore) GetFormByShareToken(ctx context.Context, token string) (*types.Form, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+formColumns+` FROM forms
		WHERE share_url = ?`, token)
	f, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying form by token: %w", err)
	}
	return f, nil
}

// SubmitForm accepts a submission. The publication gate, the counter
// increment, and the submission insert commit or roll back together;
// a counter bump without a row (or the reverse) cannot be observed.
func (s *SQLiteStore) SubmitForm(ctx context.Context, token, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning submission tx: %w", err)
	}
	defer tx.Rollback()

	var formID string
	err = tx.QueryRowContext(ctx, `
		UPDATE forms SET submissions = submissions + 1
		WHERE share_url = ? AND published = 1
		RETURNING id`, token).Scan(&formID)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish an unknown token from an unpublished form.
		var published bool
		err = tx.QueryRowContext(ctx,
			`SELECT published FROM forms WHERE share_url = ?`, token).Scan(&published)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking form publication: %w", err)
		}
		return ErrNotPublished
	}
	if err != nil {
		return fmt.Errorf("incrementing submissions: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO submissions (id, form_id, content, created_at)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(), formID, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return tx.Commit()
}

// FormStats aggregates counters across all of the owner's forms.
func (s *SQLiteStore) FormStats(ctx context.Context, ownerID string) (*types.FormStats, error) {
	var st types.FormStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(visits), 0), COALESCE(SUM(submissions), 0)
		FROM forms WHERE owner_id = ?`, ownerID).Scan(&st.Visits, &st.Submissions)
	if err != nil {
		return nil, fmt.Errorf("aggregating stats: %w", err)
	}
	st.SubmissionRate, st.BounceRate = types.Rate(st.Visits, st.Submissions)
	return &st, nil
}

func oneRowOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
