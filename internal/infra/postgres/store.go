package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"qquiz-service/internal/domain"
)

// Store is the Postgres implementation of app.QuizStore, app.ResultLedger and
// app.UserRepository. Multi-row writes run inside a single transaction.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	row := userRow{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Admin:        user.Admin,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.findUser(ctx, "u.id = ?", userID)
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.findUser(ctx, "u.username = ?", username)
}

func (s *Store) findUser(ctx context.Context, where string, arg string) (domain.User, error) {
	var row userRow
	if err := s.db.NewSelect().Model(&row).Where(where, arg).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	qz, questions, choices := quizRows(quiz)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&qz).Exec(ctx); err != nil {
			return err
		}
		return insertContent(ctx, tx, questions, choices)
	})
	if err != nil {
		return fmt.Errorf("create quiz %s: %w", quiz.ID, err)
	}
	return nil
}

// UpdateQuiz rewrites the quiz metadata and replaces its questions and choices.
func (s *Store) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	qz, questions, choices := quizRows(quiz)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(&qz).
			Column("title", "description", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrQuizNotFound
		}
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("quiz_id = ?", quiz.ID).Exec(ctx); err != nil {
			return err
		}
		return insertContent(ctx, tx, questions, choices)
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		return fmt.Errorf("update quiz %s: %w", quiz.ID, err)
	}
	return nil
}

func insertContent(ctx context.Context, tx bun.Tx, questions []questionRow, choices []choiceRow) error {
	if len(questions) > 0 {
		if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
			return err
		}
	}
	if len(choices) > 0 {
		if _, err := tx.NewInsert().Model(&choices).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DeleteQuiz removes the quiz, its questions and choices, and every result
// recorded for it. The schema cascades as well; deleting explicitly keeps the
// policy independent of constraint definitions.
func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		resultIDs := tx.NewSelect().Model((*resultRow)(nil)).Column("id").Where("quiz_id = ?", quizID)
		if _, err := tx.NewDelete().Model((*resultAnswerRow)(nil)).Where("result_id IN (?)", resultIDs).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*resultRow)(nil)).Where("quiz_id = ?", quizID).Exec(ctx); err != nil {
			return err
		}
		questionIDs := tx.NewSelect().Model((*questionRow)(nil)).Column("id").Where("quiz_id = ?", quizID)
		if _, err := tx.NewDelete().Model((*choiceRow)(nil)).Where("question_id IN (?)", questionIDs).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("quiz_id = ?", quizID).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*quizRow)(nil)).Where("id = ?", quizID).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrQuizNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		return fmt.Errorf("delete quiz %s: %w", quizID, err)
	}
	return nil
}

type quizSummaryRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID            string    `bun:"id"`
	OwnerID       string    `bun:"owner_id"`
	Title         string    `bun:"title"`
	Description   string    `bun:"description"`
	CreatedAt     time.Time `bun:"created_at"`
	QuestionCount int       `bun:"question_count,scanonly"`
}

func (s *Store) ListQuizzes(ctx context.Context, limit, offset int) ([]domain.QuizSummary, error) {
	var rows []quizSummaryRow
	err := s.db.NewSelect().Model(&rows).
		ColumnExpr("qz.id, qz.owner_id, qz.title, qz.description, qz.created_at").
		ColumnExpr("(SELECT count(*) FROM questions AS qn WHERE qn.quiz_id = qz.id) AS question_count").
		OrderExpr("qz.created_at DESC, qz.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.QuizSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuizSummary{
			ID:            row.ID,
			OwnerID:       row.OwnerID,
			Title:         row.Title,
			Description:   row.Description,
			QuestionCount: row.QuestionCount,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

// Record inserts the result and its per-question answers in one transaction.
func (s *Store) Record(ctx context.Context, userID string, report domain.ScoreReport) (domain.Result, error) {
	row := resultRow{
		ID:        uuid.NewString(),
		UserID:    userID,
		QuizID:    report.QuizID,
		Score:     report.Correct,
		Total:     report.Total,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	answers := make([]resultAnswerRow, 0, len(report.Outcomes))
	for i, o := range report.Outcomes {
		answers = append(answers, resultAnswerRow{
			ResultID:   row.ID,
			Position:   i,
			QuestionID: o.QuestionID,
			ChoiceID:   o.ChoiceID,
			Answered:   o.Answered,
			Correct:    o.Correct,
		})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		if len(answers) > 0 {
			if _, err := tx.NewInsert().Model(&answers).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if isIntegrityViolation(err) {
		return domain.Result{}, fmt.Errorf("%w: user %s or quiz %s no longer exists: %w", domain.ErrPersistence, userID, report.QuizID, err)
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return resultFromRows(row, answers), nil
}

func (s *Store) Get(ctx context.Context, resultID string) (domain.Result, error) {
	var row resultRow
	if err := s.db.NewSelect().Model(&row).Where("r.id = ?", resultID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Result{}, domain.ErrResultNotFound
		}
		return domain.Result{}, fmt.Errorf("get result: %w", err)
	}
	results, err := s.withAnswers(ctx, []resultRow{row})
	if err != nil {
		return domain.Result{}, err
	}
	return results[0], nil
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]domain.Result, error) {
	return s.listResults(ctx, "r.user_id = ?", userID)
}

func (s *Store) ListForQuiz(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.listResults(ctx, "r.quiz_id = ?", quizID)
}

func (s *Store) listResults(ctx context.Context, where, arg string) ([]domain.Result, error) {
	var rows []resultRow
	err := s.db.NewSelect().Model(&rows).
		Where(where, arg).
		OrderExpr("r.created_at DESC, r.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return s.withAnswers(ctx, rows)
}

func (s *Store) withAnswers(ctx context.Context, rows []resultRow) ([]domain.Result, error) {
	if len(rows) == 0 {
		return []domain.Result{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var answers []resultAnswerRow
	err := s.db.NewSelect().Model(&answers).
		Where("ra.result_id IN (?)", bun.In(ids)).
		OrderExpr("ra.result_id, ra.position").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load result answers: %w", err)
	}
	byResult := make(map[string][]resultAnswerRow, len(rows))
	for _, a := range answers {
		byResult[a.ResultID] = append(byResult[a.ResultID], a)
	}

	out := make([]domain.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, resultFromRows(row, byResult[row.ID]))
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

// isIntegrityViolation reports whether err carries a Postgres constraint violation.
func isIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
