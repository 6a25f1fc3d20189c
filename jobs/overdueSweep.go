package jobs

import (
	"context"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepLastRunKey = "overdue_sweep:last_run"

// sweepAlreadyRan reports whether another replica already swept today and
// claims the run otherwise. Best effort: without redis every replica sweeps,
// which is harmless because the sweep is idempotent.
func sweepAlreadyRan(day string) bool {
	last, ok, err := config.GetRedisValue(sweepLastRunKey)
	if err == nil && ok && last == day {
		return true
	}
	_ = config.SetRedisValue(sweepLastRunKey, day, 48*time.Hour)
	return false
}

// StartScheduler runs the nightly sweep that flips sent invoices past their
// due date to overdue. Schedule override via OVERDUE_SWEEP_SCHEDULE.
func StartScheduler(logger *logrus.Logger) *cron.Cron {
	schedule := strings.TrimSpace(os.Getenv("OVERDUE_SWEEP_SCHEDULE"))
	if schedule == "" {
		schedule = "0 2 * * *"
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if sweepAlreadyRan(time.Now().Format("2006-01-02")) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, err := models.MarkOverdueInvoices(ctx, time.Now())
		if err != nil {
			config.LogError(logger, "jobs", "StartScheduler", "MarkOverdueInvoices", nil, err)
			return
		}
		if count > 0 {
			logger.WithFields(logrus.Fields{
				"module": "jobs",
				"count":  count,
			}).Info("marked invoices overdue")
		}
	})
	if err != nil {
		config.LogError(logger, "jobs", "StartScheduler", schedule, nil, err)
		return c
	}

	c.Start()
	return c
}
