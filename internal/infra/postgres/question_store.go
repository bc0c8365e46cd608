package postgres

import (
	"context"
	"math"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"trivia-service/internal/domain"
)

// foreignKeyViolation is the SQLSTATE Postgres reports when questions.category has no matching category.
const foreignKeyViolation = "23503"

const questionColumns = `id, question, answer, difficulty, category`

// Store reads and writes questions and categories through a pgx pool.
// Each method is a single statement, so every call runs in its own implicit transaction.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Page(ctx context.Context, w domain.Window) ([]domain.Question, int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+`, count(*) OVER() FROM questions ORDER BY id LIMIT $1 OFFSET $2`,
		w.Limit(), w.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, "query question page")
	}
	defer rows.Close()

	var (
		out   []domain.Question
		total int
	)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Question, &q.Answer, &q.Difficulty, &q.Category, &total); err != nil {
			return nil, 0, errors.Wrap(err, "scan question page")
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterate question page")
	}
	if len(out) == 0 {
		// The window function yields no row past the end, so count separately.
		if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&total); err != nil {
			return nil, 0, errors.Wrap(err, "count questions")
		}
	}
	return out, total, nil
}

func (s *Store) ListByCategory(ctx context.Context, categoryID int) ([]domain.Question, error) {
	if !fitsInt4(categoryID) {
		return []domain.Question{}, nil
	}
	return s.queryQuestions(ctx, "list questions by category",
		`SELECT `+questionColumns+` FROM questions WHERE category = $1 ORDER BY id`, categoryID)
}

func (s *Store) Search(ctx context.Context, term string) ([]domain.Question, error) {
	return s.queryQuestions(ctx, "search questions",
		`SELECT `+questionColumns+` FROM questions WHERE question ILIKE $1 ESCAPE '\' ORDER BY id`,
		"%"+escapeLike(term)+"%")
}

func (s *Store) ListEligible(ctx context.Context, exclude []int, categoryID int) ([]domain.Question, error) {
	if categoryID != domain.AllCategories && !fitsInt4(categoryID) {
		return []domain.Question{}, nil
	}
	return s.queryQuestions(ctx, "list eligible questions",
		`SELECT `+questionColumns+` FROM questions
		 WHERE NOT (id = ANY($1)) AND ($2::int = 0 OR category = $2::int)
		 ORDER BY id`, int4IDs(exclude), categoryID)
}

func (s *Store) Create(ctx context.Context, q domain.Question) (domain.Question, error) {
	if !fitsInt4(q.Category) {
		return domain.Question{}, domain.ErrUnknownCategory
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (question, answer, difficulty, category) VALUES ($1, $2, $3, $4) RETURNING id`,
		q.Question, q.Answer, q.Difficulty, q.Category).Scan(&q.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.Question{}, domain.ErrUnknownCategory
		}
		return domain.Question{}, errors.Wrap(err, "insert question")
	}
	return q, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	if !fitsInt4(id) {
		return domain.ErrQuestionNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete question")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, type FROM categories ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Type); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "iterate categories")
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) queryQuestions(ctx context.Context, op, sql string, args ...any) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return collectQuestions(rows, op)
}

func collectQuestions(rows pgx.Rows, op string) ([]domain.Question, error) {
	defer rows.Close()
	out := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Question, &q.Answer, &q.Difficulty, &q.Category); err != nil {
			return nil, errors.Wrap(err, op)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return out, nil
}

// fitsInt4 reports whether v can be bound to an INTEGER column.
// Ids outside that range cannot exist in the table.
func fitsInt4(v int) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// int4IDs keeps the ids that can exist; the rest exclude nothing.
// The result is never nil, so ANY($1) never sees NULL.
func int4IDs(ids []int) []int32 {
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		if fitsInt4(id) {
			out = append(out, int32(id))
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in term match literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
