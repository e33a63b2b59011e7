package redis

import (
	"context"
	"fmt"

	"github.com/JulianoL13/app-proxy-keepalive/internal/common/queue"
	"github.com/redis/go-redis/v9"
)

const defaultMaxLen = 10000

type StreamsClient struct {
	client *redis.Client
	maxLen int64
}

func NewStreamsClient(client *redis.Client) *StreamsClient {
	return &StreamsClient{client: client, maxLen: defaultMaxLen}
}

// WithMaxLen caps each stream, trimming approximately. Zero disables trimming.
func (s *StreamsClient) WithMaxLen(n int64) *StreamsClient {
	s.maxLen = n
	return s
}

func (s *StreamsClient) Publish(ctx context.Context, topic string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"payload": payload,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("xadd %s: %w", topic, err)
	}
	return nil
}

var _ queue.Publisher = (*StreamsClient)(nil)
