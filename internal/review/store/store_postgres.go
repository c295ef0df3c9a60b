package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"masjid/internal/lifecycle"
	"masjid/internal/platform/database"
	"masjid/internal/review/models"
	"masjid/pkg/domain"
	"masjid/pkg/platform/sentinel"
	"masjid/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var reviewColumns = []string{"id", "mosque_id", "user_id", "rating", "criteria", "comment", "status", "created_at", "updated_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (models.Review, error) {
	var r models.Review
	var userID sql.NullInt64
	var criteria []byte
	var comment sql.NullString
	var status string
	if err := row.Scan(&r.ID, &r.MosqueID, &userID, &r.Rating, &criteria, &comment, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return models.Review{}, err
	}
	r.Criteria = map[string]int{}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &r.Criteria); err != nil {
			return models.Review{}, fmt.Errorf("unmarshal criteria: %w", err)
		}
	}
	if userID.Valid {
		uid := domain.UserID(userID.Int64)
		r.UserID = &uid
	}
	if comment.Valid {
		r.Comment = &comment.String
	}
	r.Status = lifecycle.Status(status)
	return r, nil
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Review) error {
	criteria := r.Criteria
	if criteria == nil {
		criteria = map[string]int{}
	}
	rawCriteria, err := json.Marshal(criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}
	var userID sql.NullInt64
	if r.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*r.UserID), Valid: true}
	}
	var comment sql.NullString
	if r.Comment != nil {
		comment = sql.NullString{String: *r.Comment, Valid: true}
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("reviews")
	ib.Cols(reviewColumns[1:]...)
	ib.Values(int64(r.MosqueID), userID, r.Rating, rawCriteria, comment, string(r.Status), r.CreatedAt, r.UpdatedAt)
	ib.Returning("id")
	query, args := ib.Build()

	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&r.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ReviewID) (*models.Review, error) {
	return s.find(ctx, id, false)
}

func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, id domain.ReviewID) (*models.Review, error) {
	return s.find(ctx, id, true)
}

func (s *PostgresStore) find(ctx context.Context, id domain.ReviewID, forUpdate bool) (*models.Review, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(reviewColumns...)
	sb.From("reviews")
	sb.Where(sb.Equal("id", int64(id)))
	if forUpdate {
		sb.ForUpdate()
	}
	query, args := sb.Build()

	r, err := scanReview(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) List(ctx context.Context, f models.ListFilter) ([]models.Review, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(reviewColumns...)
	sb.From("reviews")
	var where []string
	if f.MosqueID != 0 {
		where = append(where, sb.Equal("mosque_id", int64(f.MosqueID)))
	}
	if f.Status != "" {
		where = append(where, sb.Equal("status", string(f.Status)))
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
	query, args := sb.Build()

	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()
	out := []models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetStatus(ctx context.Context, id domain.ReviewID, status lifecycle.Status, at time.Time) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("reviews")
	ub.Set(ub.Assign("status", string(status)), ub.Assign("updated_at", at))
	ub.Where(ub.Equal("id", int64(id)))
	query, args := ub.Build()

	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set review status: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ReviewID) error {
	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("reviews")
	db.Where(db.Equal("id", int64(id)))
	query, args := db.Build()

	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return requireRow(res)
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
