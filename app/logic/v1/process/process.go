package process

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/filecab/filecab/app/core"
	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/pkg/safe"
)

const (
	defaultSweepSpec = "@every 1h"
	sweepBatchSize   = 200
)

// Process owns the periodic sweep: purging expired recycle bin entries and
// retrying object deletions that failed after a force-delete committed.
type Process struct {
	core *core.Core
	cron *cron.Cron
}

func NewProcess(core *core.Core) *Process {
	return &Process{
		core: core,
		cron: cron.New(),
	}
}

func (p *Process) Start() error {
	spec := p.core.Cfg().Recycle.SweepSpec
	if spec == "" {
		spec = defaultSweepSpec
	}

	if _, err := p.cron.AddFunc(spec, func() {
		safe.Run(p.sweep)
	}); err != nil {
		return err
	}

	p.cron.Start()
	slog.Info("recycle sweep scheduled", slog.String("spec", spec))
	return nil
}

func (p *Process) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Process) sweep() {
	logic := v1.NewRecycleLogic(context.Background(), p.core)

	purged, err := logic.PurgeExpired(sweepBatchSize)
	if err != nil {
		slog.Error("recycle sweep failed to purge expired entries", slog.String("error", err.Error()))
	} else if purged > 0 {
		slog.Info("recycle sweep purged expired entries", slog.Int("purged", purged))
	}

	if err = logic.RetryCleanup(sweepBatchSize); err != nil {
		slog.Error("recycle sweep failed to retry object cleanup", slog.String("error", err.Error()))
	}
}
