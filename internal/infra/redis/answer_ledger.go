package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/domain"
)

// AnswerLedger stores answers in Redis, one hash per (quiz, question):
//
//	HSET quiz:{quizID}:answers:{questionID} {participantID} {answer JSON}
//
// The hash field is the participant id, so a resubmission overwrites in
// place and the dedup guarantee of the identity key costs nothing extra.
// A per-quiz set of question ids supports quiz-wide listing and clearing.
type AnswerLedger struct {
	client *redis.Client
}

func NewAnswerLedger(client *redis.Client) *AnswerLedger {
	return &AnswerLedger{client: client}
}

func (l *AnswerLedger) Put(ctx context.Context, answer domain.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	pipe := l.client.Pipeline()
	pipe.HSet(ctx, l.answersKey(answer.QuizID, answer.QuestionID), answer.ParticipantID, data)
	pipe.SAdd(ctx, l.questionSetKey(answer.QuizID), answer.QuestionID)
	_, err = pipe.Exec(ctx)
	return err
}

func (l *AnswerLedger) Get(ctx context.Context, key domain.AnswerKey) (domain.Answer, bool, error) {
	raw, err := l.client.HGet(ctx, l.answersKey(key.QuizID, key.QuestionID), key.ParticipantID).Result()
	if err == redis.Nil {
		return domain.Answer{}, false, nil
	}
	if err != nil {
		return domain.Answer{}, false, err
	}
	var answer domain.Answer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return domain.Answer{}, false, fmt.Errorf("unmarshal answer: %w", err)
	}
	return answer, true, nil
}

func (l *AnswerLedger) ListByQuestion(ctx context.Context, quizID, questionID string) ([]domain.Answer, error) {
	raw, err := l.client.HGetAll(ctx, l.answersKey(quizID, questionID)).Result()
	if err != nil {
		return nil, err
	}
	return decodeAnswers(raw)
}

func (l *AnswerLedger) ListByQuiz(ctx context.Context, quizID string) ([]domain.Answer, error) {
	questionIDs, err := l.client.SMembers(ctx, l.questionSetKey(quizID)).Result()
	if err != nil {
		return nil, err
	}
	var out []domain.Answer
	for _, questionID := range questionIDs {
		raw, err := l.client.HGetAll(ctx, l.answersKey(quizID, questionID)).Result()
		if err != nil {
			return nil, err
		}
		answers, err := decodeAnswers(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, answers...)
	}
	return out, nil
}

func (l *AnswerLedger) DeleteByQuiz(ctx context.Context, quizID string) error {
	questionIDs, err := l.client.SMembers(ctx, l.questionSetKey(quizID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(questionIDs)+1)
	for _, questionID := range questionIDs {
		keys = append(keys, l.answersKey(quizID, questionID))
	}
	keys = append(keys, l.questionSetKey(quizID))
	return l.client.Del(ctx, keys...).Err()
}

func (l *AnswerLedger) answersKey(quizID, questionID string) string {
	return "quiz:" + quizID + ":answers:" + questionID
}

func (l *AnswerLedger) questionSetKey(quizID string) string {
	return "quiz:" + quizID + ":answered-questions"
}

func decodeAnswers(raw map[string]string) ([]domain.Answer, error) {
	out := make([]domain.Answer, 0, len(raw))
	for _, v := range raw {
		var answer domain.Answer
		if err := json.Unmarshal([]byte(v), &answer); err != nil {
			return nil, fmt.Errorf("unmarshal answer: %w", err)
		}
		out = append(out, answer)
	}
	return out, nil
}
