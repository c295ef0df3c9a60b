package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"masjid/internal/mosque/models"
	"masjid/pkg/domain"
	"masjid/pkg/platform/sentinel"
	"masjid/pkg/platform/tx"
)

// PostgresStore persists mosques in PostgreSQL. Calls made under a
// transaction in ctx use it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func mosqueColumns() []string {
	cols := append([]string{"id"}, DetailColumns...)
	return append(cols, "approved", "created_at", "updated_at")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMosque(row rowScanner) (models.Mosque, error) {
	var m models.Mosque
	var dest DetailsDest
	targets := append([]any{&m.ID}, dest.Targets()...)
	targets = append(targets, &m.Approved, &m.CreatedAt, &m.UpdatedAt)
	if err := row.Scan(targets...); err != nil {
		return models.Mosque{}, err
	}
	details, err := dest.Details()
	if err != nil {
		return models.Mosque{}, err
	}
	m.Details = details
	return m, nil
}

func (s *PostgresStore) Create(ctx context.Context, m *models.Mosque) error {
	values, err := DetailValues(m.Details)
	if err != nil {
		return err
	}
	now := m.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("mosques")
	ib.Cols(slices.Concat(DetailColumns, []string{"approved", "created_at", "updated_at"})...)
	ib.Values(slices.Concat(values, []any{m.Approved, now, now})...)
	ib.Returning("id", "created_at", "updated_at")

	query, args := ib.Build()
	err = tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert mosque: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.MosqueID) (*models.Mosque, error) {
	return s.find(ctx, id, false)
}

func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, id domain.MosqueID) (*models.Mosque, error) {
	return s.find(ctx, id, true)
}

func (s *PostgresStore) find(ctx context.Context, id domain.MosqueID, forUpdate bool) (*models.Mosque, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(mosqueColumns()...)
	sb.From("mosques")
	sb.Where(sb.Equal("id", int64(id)))
	if forUpdate {
		sb.ForUpdate()
	}
	query, args := sb.Build()

	m, err := scanMosque(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find mosque: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) Update(ctx context.Context, m *models.Mosque) error {
	values, err := DetailValues(m.Details)
	if err != nil {
		return err
	}
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("mosques")
	assignments := make([]string, 0, len(DetailColumns)+2)
	for i, col := range DetailColumns {
		assignments = append(assignments, ub.Assign(col, values[i]))
	}
	assignments = append(assignments, ub.Assign("approved", m.Approved), ub.Assign("updated_at", m.UpdatedAt))
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", int64(m.ID)))
	query, args := ub.Build()

	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update mosque: %w", err)
	}
	return requireRow(res)
}

// Delete relies on ON DELETE CASCADE for edits, edit confirmations and reviews.
func (s *PostgresStore) Delete(ctx context.Context, id domain.MosqueID) error {
	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("mosques")
	db.Where(db.Equal("id", int64(id)))
	query, args := db.Build()

	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete mosque: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) CountPendingEdits(ctx context.Context, id domain.MosqueID) (int, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("mosque_edit_suggestions")
	sb.Where(sb.Equal("mosque_id", int64(id)), sb.Equal("status", "pending_approval"))
	query, args := sb.Build()

	var n int
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending edits: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context, f models.ListFilter) ([]models.Mosque, error) {
	return s.query(ctx, listSelect(f))
}

func listSelect(f models.ListFilter) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(mosqueColumns()...)
	sb.From("mosques")
	where := []string{sb.Equal("approved", true)}
	if f.Governorate != "" {
		where = append(where, sb.ILike("governorate", containsPattern(f.Governorate)))
	}
	if f.City != "" {
		where = append(where, sb.ILike("city", containsPattern(f.City)))
	}
	if f.Type != "" {
		where = append(where, sb.Equal("type", f.Type))
	}
	if f.Query != "" {
		where = append(where, sb.ILike("arabic_name", containsPattern(f.Query)))
	}
	sb.Where(where...)
	sb.OrderBy("id").Asc()
	if f.Limit > 0 {
		sb.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sb.Offset(f.Offset)
	}
	return sb
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches sub literally anywhere in the column, like the
// memory store's substring filter. Backslash is the default LIKE escape.
func containsPattern(sub string) string {
	return "%" + likeEscaper.Replace(sub) + "%"
}

func (s *PostgresStore) ListInBox(ctx context.Context, box models.BoundingBox) ([]models.Mosque, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(mosqueColumns()...)
	sb.From("mosques")
	sb.Where(
		sb.Equal("approved", true),
		sb.Between("latitude", box.MinLat, box.MaxLat),
		sb.Between("longitude", box.MinLng, box.MaxLng),
	)
	sb.OrderBy("id").Asc()
	return s.query(ctx, sb)
}

func (s *PostgresStore) query(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]models.Mosque, error) {
	query, args := sb.Build()
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mosques: %w", err)
	}
	defer rows.Close()

	out := []models.Mosque{}
	for rows.Next() {
		m, err := scanMosque(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mosque: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
