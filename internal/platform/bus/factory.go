package bus

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// New builds the bus selected by driver. queue names the durable queue a
// rabbitmq subscriber consumes from; the redis driver ignores it.
func New(driver, redisURL, rabbitURL, exchange, queue string, lg zerolog.Logger) (Bus, error) {
	switch driver {
	case "redis":
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return NewRedis(redis.NewClient(opts), lg), nil
	case "rabbitmq":
		return NewRabbit(rabbitURL, exchange, queue, lg)
	default:
		return nil, fmt.Errorf("unknown bus driver %q", driver)
	}
}
