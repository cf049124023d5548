package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// QuestionCache decorates a question repository with a Redis cache of the
// ordered question list, one JSON value per quiz with a jittered TTL.
// Every control transition and answer submission re-reads the question set,
// so the cache sits on the hot path; writes go through to the backing store
// and invalidate the cached list.
type QuestionCache struct {
	client  *redis.Client
	backing app.QuestionRepository
	ttl     time.Duration
	sf      singleflight.Group
}

func NewQuestionCache(client *redis.Client, backing app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
	}
}

func (c *QuestionCache) List(ctx context.Context, quizID string) ([]domain.Question, error) {
	key := c.key(quizID)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return decodeQuestions(raw)
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		raw, err := c.client.Get(ctx, key).Result()
		if err == nil {
			return decodeQuestionsAny(raw)
		}

		questions, err := c.backing.List(ctx, quizID)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("marshal questions: %w", err)
		}
		_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) Put(ctx context.Context, question domain.Question) error {
	if err := c.backing.Put(ctx, question); err != nil {
		return err
	}
	return c.client.Del(ctx, c.key(question.QuizID)).Err()
}

func (c *QuestionCache) Delete(ctx context.Context, quizID, questionID string) error {
	if err := c.backing.Delete(ctx, quizID, questionID); err != nil {
		return err
	}
	return c.client.Del(ctx, c.key(quizID)).Err()
}

func (c *QuestionCache) key(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

// ttlWithJitter spreads expirations by up to 10%. The global rand source is
// locked, so concurrent cache fills for different quizzes are safe.
func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

func decodeQuestions(raw string) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return questions, nil
}

func decodeQuestionsAny(raw string) (interface{}, error) {
	return decodeQuestions(raw)
}
