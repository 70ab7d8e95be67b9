package job

import (
	"context"
	"time"

	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/util/metrics"
	"github.com/storerate/storerate/web/service"
)

// StatsJob refreshes the catalogue gauges exported on /metrics.
type StatsJob struct {
	ctx          context.Context
	statsService service.StatsService
	timeout      time.Duration
}

// NewStatsJob returns a job whose queries are cancelled along with ctx.
func NewStatsJob(ctx context.Context) *StatsJob {
	return &StatsJob{ctx: ctx, timeout: 30 * time.Second}
}

func (j *StatsJob) Run() {
	defer common.Recover("stats job")

	ctx, cancel := context.WithTimeout(j.ctx, j.timeout)
	defer cancel()

	st, err := j.statsService.Collect(ctx)
	if err != nil {
		logger.Warning("collect stats failed:", err)
		return
	}
	metrics.Stores.Set(float64(st.Stores))
	metrics.Ratings.Set(float64(st.Ratings))
	for role, n := range st.Users {
		metrics.Users.WithLabelValues(role.String()).Set(float64(n))
	}
	logger.Debugf("stats: %d stores, %d ratings, users %v", st.Stores, st.Ratings, st.Users)
}
