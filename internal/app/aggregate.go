package app

import (
	"context"
	"sort"

	"livequiz-service/internal/domain"
)

// LiveCounts buckets the answers for one question by chosen option. The
// result is sized to the question's choice list (capped at MaxChoices);
// choice values outside [1, size] are ignored. Zero answers yields an
// all-zero slice. Counts are advisory display, recomputed from whatever
// snapshot of the ledger the query sees; no locking against concurrent
// submissions is needed.
func (s *QuizService) LiveCounts(ctx context.Context, quizID, questionID string) ([]int, error) {
	questions, err := s.questions.List(ctx, quizID)
	if err != nil {
		return nil, err
	}
	size := 0
	for _, q := range questions {
		if q.ID == questionID {
			size = len(q.Choices)
			break
		}
	}
	if size == 0 {
		return nil, domain.ErrQuestionNotFound
	}
	if size > domain.MaxChoices {
		size = domain.MaxChoices
	}

	answers, err := s.ledger.ListByQuestion(ctx, quizID, questionID)
	if err != nil {
		return nil, err
	}
	counts := make([]int, size)
	for _, a := range answers {
		if a.Choice >= 1 && a.Choice <= size {
			counts[a.Choice-1]++
		}
	}
	return counts, nil
}

// Ranking computes the final standings: every registered participant ranked
// by correct-answer count, descending. Participants who never answered rank
// with count 0. Ties break by earliest join time, then participant id, so
// the order is deterministic.
func (s *QuizService) Ranking(ctx context.Context, quizID string) ([]domain.RankingEntry, error) {
	participants, err := s.participants.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	answers, err := s.ledger.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.List(ctx, quizID)
	if err != nil {
		return nil, err
	}

	correctByQuestion := make(map[string]int, len(questions))
	for _, q := range questions {
		correctByQuestion[q.ID] = q.Answer
	}

	// At most one answer per (question, participant) exists by construction
	// of the identity key, so counting is a plain accumulation.
	correctCount := make(map[string]int)
	for _, a := range answers {
		if want, ok := correctByQuestion[a.QuestionID]; ok && a.Choice == want {
			correctCount[a.ParticipantID]++
		}
	}

	entries := make([]domain.RankingEntry, 0, len(participants))
	joined := make(map[string]int64, len(participants))
	for _, p := range participants {
		entries = append(entries, domain.RankingEntry{
			ParticipantID: p.ID,
			Name:          p.Name,
			CorrectCount:  correctCount[p.ID],
		})
		joined[p.ID] = p.JoinedAt.UnixNano()
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CorrectCount != entries[j].CorrectCount {
			return entries[i].CorrectCount > entries[j].CorrectCount
		}
		if joined[entries[i].ParticipantID] != joined[entries[j].ParticipantID] {
			return joined[entries[i].ParticipantID] < joined[entries[j].ParticipantID]
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
