package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"masjid/internal/lifecycle"
	mosquestore "masjid/internal/mosque/store"
	"masjid/internal/platform/database"
	"masjid/internal/submission/models"
	"masjid/pkg/domain"
	"masjid/pkg/platform/sentinel"
	"masjid/pkg/platform/tx"
)

// PostgresStore persists submissions. The unique constraint on
// (submission, user) in the confirmation tables is the de-duplication
// authority; a violation surfaces as sentinel.ErrDuplicate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type kindTables struct {
	submissions   string
	confirmations string
	foreignKey    string
}

func tablesFor(kind models.Kind) (kindTables, error) {
	switch kind {
	case models.KindNewEntry:
		return kindTables{"mosque_suggestions", "suggestion_confirmations", "suggestion_id"}, nil
	case models.KindEdit:
		return kindTables{"mosque_edit_suggestions", "edit_confirmations", "edit_id"}, nil
	}
	return kindTables{}, sentinel.ErrInvalidState
}

var lifecycleColumns = []string{"status", "confirmations_count", "created_by_user_id", "screen_labels", "screen_reason", "created_at", "updated_at"}

func suggestionColumns() []string {
	return slices.Concat([]string{"id"}, mosquestore.DetailColumns, []string{"approved_mosque_id"}, lifecycleColumns)
}

func editColumns() []string {
	return slices.Concat([]string{"id", "mosque_id", "patch"}, lifecycleColumns)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type lifecycleDest struct {
	status    string
	count     int
	createdBy sql.NullInt64
	labels    []byte
	reason    string
	createdAt time.Time
	updatedAt time.Time
}

func (l *lifecycleDest) targets() []any {
	return []any{&l.status, &l.count, &l.createdBy, &l.labels, &l.reason, &l.createdAt, &l.updatedAt}
}

func (l *lifecycleDest) labelsSlice() ([]string, error) {
	var out []string
	if len(l.labels) > 0 {
		if err := json.Unmarshal(l.labels, &out); err != nil {
			return nil, fmt.Errorf("unmarshal screen labels: %w", err)
		}
	}
	return out, nil
}

func (l *lifecycleDest) creator() *domain.UserID {
	if !l.createdBy.Valid {
		return nil
	}
	id := domain.UserID(l.createdBy.Int64)
	return &id
}

func scanSuggestion(row rowScanner) (models.Suggestion, error) {
	var s models.Suggestion
	var details mosquestore.DetailsDest
	var life lifecycleDest
	var approvedMosque sql.NullInt64
	targets := slices.Concat([]any{&s.ID}, details.Targets(), []any{&approvedMosque}, life.targets())
	if err := row.Scan(targets...); err != nil {
		return models.Suggestion{}, err
	}
	d, err := details.Details()
	if err != nil {
		return models.Suggestion{}, err
	}
	labels, err := life.labelsSlice()
	if err != nil {
		return models.Suggestion{}, err
	}
	s.Details = d
	s.Status = lifecycle.Status(life.status)
	s.ConfirmationsCount = life.count
	s.CreatedByUserID = life.creator()
	s.ScreenLabels = labels
	s.ScreenReason = life.reason
	s.CreatedAt, s.UpdatedAt = life.createdAt, life.updatedAt
	if approvedMosque.Valid {
		id := domain.MosqueID(approvedMosque.Int64)
		s.ApprovedMosqueID = &id
	}
	return s, nil
}

func scanEdit(row rowScanner) (models.Edit, error) {
	var e models.Edit
	var patch []byte
	var life lifecycleDest
	if err := row.Scan(slices.Concat([]any{&e.ID, &e.MosqueID, &patch}, life.targets())...); err != nil {
		return models.Edit{}, err
	}
	if err := json.Unmarshal(patch, &e.Patch); err != nil {
		return models.Edit{}, fmt.Errorf("unmarshal patch: %w", err)
	}
	labels, err := life.labelsSlice()
	if err != nil {
		return models.Edit{}, err
	}
	e.Status = lifecycle.Status(life.status)
	e.ConfirmationsCount = life.count
	e.CreatedByUserID = life.creator()
	e.ScreenLabels = labels
	e.ScreenReason = life.reason
	e.CreatedAt, e.UpdatedAt = life.createdAt, life.updatedAt
	return e, nil
}

func lifecycleValues(status lifecycle.Status, count int, createdBy *domain.UserID, labels []string, reason string, createdAt, updatedAt time.Time) ([]any, error) {
	if labels == nil {
		labels = []string{}
	}
	rawLabels, err := json.Marshal(labels)
	if err != nil {
		return nil, fmt.Errorf("marshal screen labels: %w", err)
	}
	var creator sql.NullInt64
	if createdBy != nil {
		creator = sql.NullInt64{Int64: int64(*createdBy), Valid: true}
	}
	return []any{string(status), count, creator, rawLabels, reason, createdAt, updatedAt}, nil
}

func (s *PostgresStore) CreateSuggestion(ctx context.Context, sug *models.Suggestion) error {
	details, err := mosquestore.DetailValues(sug.Details)
	if err != nil {
		return err
	}
	life, err := lifecycleValues(sug.Status, sug.ConfirmationsCount, sug.CreatedByUserID, sug.ScreenLabels, sug.ScreenReason, sug.CreatedAt, sug.UpdatedAt)
	if err != nil {
		return err
	}
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("mosque_suggestions")
	ib.Cols(slices.Concat(mosquestore.DetailColumns, lifecycleColumns)...)
	ib.Values(slices.Concat(details, life)...)
	ib.Returning("id")
	query, args := ib.Build()

	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&sug.ID); err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindSuggestion(ctx context.Context, id domain.SuggestionID) (*models.Suggestion, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(suggestionColumns()...)
	sb.From("mosque_suggestions")
	sb.Where(sb.Equal("id", int64(id)))
	query, args := sb.Build()

	sug, err := scanSuggestion(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find suggestion: %w", err)
	}
	return &sug, nil
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, f models.ListFilter) ([]models.Suggestion, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(suggestionColumns()...)
	sb.From("mosque_suggestions")
	applyFilter(sb, f)
	query, args := sb.Build()

	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()
	out := []models.Suggestion{}
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, sug)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkSuggestionApproved(ctx context.Context, id domain.SuggestionID, mosqueID domain.MosqueID, at time.Time) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("mosque_suggestions")
	ub.Set(
		ub.Assign("status", string(lifecycle.StatusApproved)),
		ub.Assign("approved_mosque_id", int64(mosqueID)),
		ub.Assign("updated_at", at),
	)
	ub.Where(ub.Equal("id", int64(id)))
	return s.execOne(ctx, ub, "approve suggestion")
}

func (s *PostgresStore) CreateEdit(ctx context.Context, e *models.Edit) error {
	patch, err := json.Marshal(e.Patch)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}
	life, err := lifecycleValues(e.Status, e.ConfirmationsCount, e.CreatedByUserID, e.ScreenLabels, e.ScreenReason, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return err
	}
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("mosque_edit_suggestions")
	ib.Cols(slices.Concat([]string{"mosque_id", "patch"}, lifecycleColumns)...)
	ib.Values(slices.Concat([]any{int64(e.MosqueID), patch}, life)...)
	ib.Returning("id")
	query, args := ib.Build()

	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert edit: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindEdit(ctx context.Context, id domain.EditID) (*models.Edit, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(editColumns()...)
	sb.From("mosque_edit_suggestions")
	sb.Where(sb.Equal("id", int64(id)))
	query, args := sb.Build()

	e, err := scanEdit(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find edit: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) ListEdits(ctx context.Context, f models.ListFilter) ([]models.Edit, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(editColumns()...)
	sb.From("mosque_edit_suggestions")
	applyFilter(sb, f)
	query, args := sb.Build()

	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list edits: %w", err)
	}
	defer rows.Close()
	out := []models.Edit{}
	for rows.Next() {
		e, err := scanEdit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LockState reads the lifecycle columns with FOR UPDATE so confirmers of the
// same submission queue behind each other until commit.
func (s *PostgresStore) LockState(ctx context.Context, kind models.Kind, id int64) (models.State, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return models.State{}, err
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("status", "confirmations_count")
	sb.From(t.submissions)
	sb.Where(sb.Equal("id", id))
	sb.ForUpdate()
	query, args := sb.Build()

	st := models.State{Kind: kind, ID: id}
	var status string
	err = tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&status, &st.ConfirmationsCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.State{}, sentinel.ErrNotFound
		}
		return models.State{}, fmt.Errorf("lock submission: %w", err)
	}
	st.Status = lifecycle.Status(status)
	return st, nil
}

func (s *PostgresStore) InsertConfirmation(ctx context.Context, kind models.Kind, id int64, userID domain.UserID, at time.Time) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(t.confirmations)
	ib.Cols(t.foreignKey, "user_id", "created_at")
	ib.Values(id, int64(userID), at)
	query, args := ib.Build()

	if _, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrDuplicate
		}
		if database.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert confirmation: %w", err)
	}
	return nil
}

// IncrementConfirmations bumps the denormalized count in one statement.
func (s *PostgresStore) IncrementConfirmations(ctx context.Context, kind models.Kind, id int64, at time.Time) (int, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(t.submissions)
	ub.Set(ub.Incr("confirmations_count"), ub.Assign("updated_at", at))
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING confirmations_count")
	query, args := ub.Build()

	var count int
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("increment confirmations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountConfirmations(ctx context.Context, kind models.Kind, id int64) (int, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(t.confirmations)
	sb.Where(sb.Equal(t.foreignKey, id))
	query, args := sb.Build()

	var n int
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count confirmations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, kind models.Kind, id int64, status lifecycle.Status, at time.Time) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(t.submissions)
	ub.Set(ub.Assign("status", string(status)), ub.Assign("updated_at", at))
	ub.Where(ub.Equal("id", id))
	return s.execOne(ctx, ub, "set status")
}

// Delete relies on ON DELETE CASCADE for the confirmations.
func (s *PostgresStore) Delete(ctx context.Context, kind models.Kind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(t.submissions)
	db.Where(db.Equal("id", id))
	query, args := db.Build()

	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) execOne(ctx context.Context, b sqlbuilder.Builder, op string) error {
	query, args := b.BuildWithFlavor(sqlbuilder.PostgreSQL)
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireRow(res)
}

func applyFilter(sb *sqlbuilder.SelectBuilder, f models.ListFilter) {
	var where []string
	if f.Status != "" {
		where = append(where, sb.Equal("status", string(f.Status)))
	}
	if f.CreatedBy != nil {
		where = append(where, sb.Equal("created_by_user_id", int64(*f.CreatedBy)))
	}
	if f.MosqueID != nil {
		where = append(where, sb.Equal("mosque_id", int64(*f.MosqueID)))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("created_at DESC", "id DESC")
	if f.Limit > 0 {
		sb.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sb.Offset(f.Offset)
	}
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
