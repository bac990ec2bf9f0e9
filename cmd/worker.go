package cmd

import (
	"poolmanager/worker"
	"poolmanager/worker/monitor"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "pool ledger job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database, poolStore := provideStores(ctx)
		checkpoint := monitor.MemoryCheckpoint()
		if database != nil {
			defer database.Close()
			checkpoint = monitor.PropertyCheckpoint(providePropertyStore(database), monitor.CheckpointKey)
		}

		pools := providePoolService(ctx, poolStore)

		spec, _ := cmd.Flags().GetString("monitor.spec")
		batch, _ := cmd.Flags().GetInt("monitor.batch")

		jobs := []worker.IJob{
			monitor.New(monitor.Config{
				Location: cfg.App.Location,
				Spec:     spec,
				Batch:    batch,
			}, pools, poolStore, checkpoint),
		}

		for _, job := range jobs {
			if err := job.Start(); err != nil {
				log.WithError(err).Fatal("job.Start")
			}
		}

		ctx = signal.WithContext(ctx)
		<-ctx.Done()

		for _, job := range jobs {
			if err := job.Stop(); err != nil {
				log.WithError(err).Errorln("job.Stop")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().String("monitor.spec", "@every 30s", "cron spec of the position monitor")
	workerCmd.Flags().Int("monitor.batch", 100, "reserves projected per monitor tick")
}
