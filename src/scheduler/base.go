package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type ScheduledTask struct {
	name   string
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
	logger *logrus.Logger
}

// NewScheduledTask registers taskFunc under cronSpec and starts the
// schedule immediately.
func NewScheduledTask(name, cronSpec string, logger *logrus.Logger, taskFunc func()) (*ScheduledTask, error) {
	c := cron.New()
	cancel := make(chan struct{})
	task := &ScheduledTask{
		name:   name,
		cron:   c,
		cancel: cancel,
		logger: logger,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-cancel:
			return
		default:
			logger.WithField("task", name).Debug("running scheduled task")
			taskFunc()
		}
	})
	if err != nil {
		return nil, err
	}

	task.cronID = id
	c.Start()
	logger.WithField("task", name).WithField("cron", cronSpec).Info("scheduled task registered")
	return task, nil
}

func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	close(s.cancel)
	s.logger.WithField("task", s.name).Info("scheduled task cancelled")
}
