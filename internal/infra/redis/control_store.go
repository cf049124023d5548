package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/domain"
)

// ControlStore keeps the per-quiz control state as a JSON value. An absent
// key reads as the zero state, mirroring the "no document yet" case of a
// document store.
type ControlStore struct {
	client *redis.Client
}

func NewControlStore(client *redis.Client) *ControlStore {
	return &ControlStore{client: client}
}

func (s *ControlStore) Get(ctx context.Context, quizID string) (domain.ControlState, error) {
	raw, err := s.client.Get(ctx, s.key(quizID)).Result()
	if err == redis.Nil {
		return domain.ControlState{QuizID: quizID}, nil
	}
	if err != nil {
		return domain.ControlState{}, err
	}
	var state domain.ControlState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return domain.ControlState{}, fmt.Errorf("unmarshal control state: %w", err)
	}
	return state, nil
}

func (s *ControlStore) Put(ctx context.Context, state domain.ControlState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal control state: %w", err)
	}
	return s.client.Set(ctx, s.key(state.QuizID), data, 0).Err()
}

func (s *ControlStore) key(quizID string) string {
	return "quiz:" + quizID + ":control"
}
