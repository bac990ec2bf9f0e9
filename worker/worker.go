package worker

import (
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// IJob job的接口
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

type BaseJob struct {
	Cron   *cron.Cron
	OnWork OnWork
	Name   string

	running sync.Mutex
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

// Run skip the tick when the previous one is still running
func (job *BaseJob) Run() {
	if !job.running.TryLock() {
		return
	}
	defer job.running.Unlock()

	if err := job.OnWork(); err != nil {
		logrus.WithError(err).WithField("worker", job.Name).Debugln("job.OnWork")
	}
}
