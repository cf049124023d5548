package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"livequiz-service/internal/domain"
)

// QuestionStore is the durable question repository. Choices are kept as
// JSONB; the (quiz_id, id) primary key makes Put an upsert.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) List(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, quiz_id, text, choices, answer, duration, created_at
		FROM questions
		WHERE quiz_id = $1
		ORDER BY created_at ASC, id ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		var choices []byte
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &choices, &q.Answer, &q.Duration, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(choices, &q.Choices); err != nil {
			return nil, fmt.Errorf("unmarshal choices: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *QuestionStore) Put(ctx context.Context, question domain.Question) error {
	choices, err := json.Marshal(question.Choices)
	if err != nil {
		return fmt.Errorf("marshal choices: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO questions (id, quiz_id, text, choices, answer, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (quiz_id, id) DO UPDATE
		SET text = EXCLUDED.text,
		    choices = EXCLUDED.choices,
		    answer = EXCLUDED.answer,
		    duration = EXCLUDED.duration`,
		question.ID, question.QuizID, question.Text, choices,
		question.Answer, question.Duration, question.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert question: %w", err)
	}
	return nil
}

func (s *QuestionStore) Delete(ctx context.Context, quizID, questionID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM questions WHERE quiz_id = $1 AND id = $2`, quizID, questionID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// QuizStore is the durable quiz metadata repository.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) Get(ctx context.Context, ownerID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := s.pool.QueryRow(ctx, `
		SELECT owner_id, title, updated_at FROM quizzes WHERE owner_id = $1`,
		ownerID).Scan(&quiz.OwnerID, &quiz.Title, &quiz.UpdatedAt)
	if err == pgx.ErrNoRows {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) Put(ctx context.Context, quiz domain.Quiz) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quizzes (owner_id, title, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE
		SET title = EXCLUDED.title, updated_at = EXCLUDED.updated_at`,
		quiz.OwnerID, quiz.Title, quiz.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert quiz: %w", err)
	}
	return nil
}
