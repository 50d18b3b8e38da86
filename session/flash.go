package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot status message shown on the next page a session loads.
type Flash struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func flashKey(sessionID string) string { return fmt.Sprintf("library:flash:%s", sessionID) }

func (s *AppSessionStore) AddFlash(ctx context.Context, sessionID string, f Flash) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, flashKey(sessionID), b)
	pipe.Expire(ctx, flashKey(sessionID), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// PopFlashes returns the queued messages in order and clears the queue.
func (s *AppSessionStore) PopFlashes(ctx context.Context, sessionID string) ([]Flash, error) {
	var lr *redis.StringSliceCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lr = pipe.LRange(ctx, flashKey(sessionID), 0, -1)
		pipe.Del(ctx, flashKey(sessionID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	raw := lr.Val()
	out := make([]Flash, 0, len(raw))
	for _, r := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(r), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
