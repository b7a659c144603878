// Package jobs provides scheduled background tasks for the fulfillment service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// DispatchRetryJob re-dispatches orders that are ready for pickup but have no
// delivery assignment yet, because no driver was available when they became
// ready or the dispatch after the status change failed.
//
// # Usage
//
//	retry := jobs.NewDispatchRetryJob(redispatchHandler, cfg.DispatchRetrySpec, 0, logger)
//	jobManager := jobs.NewJobManager(retry)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Finding nothing to dispatch and finding no driver are expected outcomes and
// are not logged as errors. Overlapping runs are skipped.
package jobs
