package job

import (
	"time"

	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/util/common"
)

type limiterCleaner interface {
	Cleanup(idle time.Duration) int
}

// RateLimitCleanupJob drops limiter state for clients that went quiet.
type RateLimitCleanupJob struct {
	limiter limiterCleaner
	idle    time.Duration
}

func NewRateLimitCleanupJob(limiter limiterCleaner, idle time.Duration) *RateLimitCleanupJob {
	return &RateLimitCleanupJob{limiter: limiter, idle: idle}
}

func (j *RateLimitCleanupJob) Run() {
	defer common.Recover("rate limit cleanup job")

	if n := j.limiter.Cleanup(j.idle); n > 0 {
		logger.Debugf("rate limiter: forgot %d idle clients", n)
	}
}
