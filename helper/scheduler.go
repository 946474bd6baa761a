package helper

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var registryScheduler gocron.Scheduler

// StartRegistryJanitor prunes idle scan workflows, payment flows and order
// feeds every 10 minutes.
func StartRegistryJanitor(workflows *WorkflowRegistry, payments *PaymentRegistry, feeds *FeedRegistry) {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}

	registryScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()
			pruned := workflows.Prune(now) + payments.Prune(now) + feeds.Prune(now)
			if pruned > 0 {
				log.Printf("registry janitor: pruned %d idle sessions", pruned)
			}
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("Registry janitor started (every 10m)")
}

func StopRegistryJanitor() {
	if registryScheduler != nil {
		_ = registryScheduler.Shutdown()
	}
}
