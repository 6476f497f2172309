package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	// ExpireDuration is the idle lifetime of room records, refreshed on
	// every touch.
	ExpireDuration time.Duration
	// PresenceTTL bounds how long a presence record outlives its last
	// refresh; expiry is the disconnect cleanup.
	PresenceTTL time.Duration
}

type repo struct {
	rc             *redis.Client
	logger         *slog.Logger
	expireDuration time.Duration
	presenceTTL    time.Duration
	nextSeqScript  string
}

func NewRepo(rc *redis.Client, logger *slog.Logger, cfg *Config) *repo {
	return &repo{
		rc:             rc,
		logger:         logger,
		expireDuration: cfg.ExpireDuration,
		presenceTTL:    cfg.PresenceTTL,
		nextSeqScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
	}
}
