package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"livequiz-service/internal/domain"
)

// Authoring use cases: question CRUD and the quiz title, all owner-gated.
// In this deployment the owner id doubles as the quiz id, so the ownership
// check is a comparison against the question's quiz id; the gate lives here
// rather than in the UI so a forged client cannot mutate someone else's set.

// SaveQuestion creates or updates a question. New questions count against
// the per-quiz limit; updates to an existing id do not.
func (s *QuizService) SaveQuestion(ctx context.Context, ownerID string, question domain.Question) (domain.Question, error) {
	if question.QuizID != ownerID {
		return domain.Question{}, domain.ErrNotOwner
	}
	if err := question.Validate(); err != nil {
		return domain.Question{}, err
	}

	existing, err := s.questions.List(ctx, question.QuizID)
	if err != nil {
		return domain.Question{}, err
	}
	isUpdate := false
	var prev domain.Question
	for _, q := range existing {
		if q.ID == question.ID {
			isUpdate = true
			prev = q
			// Creation order is progression order; an edit keeps its slot.
			question.CreatedAt = q.CreatedAt
			break
		}
	}
	if !isUpdate {
		if len(existing) >= domain.MaxQuestions {
			return domain.Question{}, domain.ErrQuestionLimit
		}
		if question.CreatedAt.IsZero() {
			question.CreatedAt = s.now()
		}
	}

	if err := s.questions.Put(ctx, question); err != nil {
		return domain.Question{}, err
	}
	if isUpdate {
		s.releaseImages(ctx, prev.Choices, question.Choices)
	}
	s.log.Info("question saved",
		zap.String("quizId", question.QuizID),
		zap.String("questionId", question.ID),
		zap.Bool("update", isUpdate))
	return question, nil
}

// DeleteQuestion removes a question from the owner's set, along with any
// stored choice images it was the last reference to.
func (s *QuizService) DeleteQuestion(ctx context.Context, ownerID, quizID, questionID string) error {
	if quizID != ownerID {
		return domain.ErrNotOwner
	}
	questions, err := s.questions.List(ctx, quizID)
	if err != nil {
		return err
	}
	var removed domain.Question
	for _, q := range questions {
		if q.ID == questionID {
			removed = q
			break
		}
	}
	if err := s.questions.Delete(ctx, quizID, questionID); err != nil {
		return err
	}
	s.releaseImages(ctx, removed.Choices, nil)
	return nil
}

// releaseImages deletes choice images that were referenced by old but are
// absent from kept. Best effort: a failed removal is logged, never surfaced
// to the host, since the question mutation itself already succeeded.
func (s *QuizService) releaseImages(ctx context.Context, old, kept []domain.Choice) {
	if s.images == nil {
		return
	}
	still := make(map[string]bool, len(kept))
	for _, c := range kept {
		if c.ImageURL != "" {
			still[c.ImageURL] = true
		}
	}
	for _, c := range old {
		if c.ImageURL == "" || still[c.ImageURL] {
			continue
		}
		if err := s.images.Delete(ctx, c.ImageURL); err != nil {
			s.log.Warn("choice image removal failed",
				zap.String("url", c.ImageURL),
				zap.Error(err))
		}
	}
}

// SetTitle stores the quiz display title. A blank or whitespace-only title
// falls back to the default, matching what readers would derive anyway.
func (s *QuizService) SetTitle(ctx context.Context, ownerID, title string) (domain.Quiz, error) {
	quiz := domain.Quiz{
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		UpdatedAt: s.now(),
	}
	if quiz.Title == "" {
		quiz.Title = domain.DefaultQuizTitle
	}
	if err := s.quizzes.Put(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Title returns the quiz display title, falling back to the default when no
// quiz record exists yet.
func (s *QuizService) Title(ctx context.Context, quizID string) (string, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.DefaultQuizTitle, nil
	}
	if err != nil {
		return "", err
	}
	return quiz.DisplayTitle(), nil
}
