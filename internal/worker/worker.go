package worker

import (
	"context"

	"github.com/cradoe/kycflow/internal/repository"
	"github.com/cradoe/kycflow/internal/stream"
)

type Worker struct {
	KafkaStream  *stream.KafkaStream
	ActivityRepo repository.ActivityRepository
	Ctx          context.Context
}

const (
	// stageAuditGroupID is used by workers that record stage outcomes in the
	// activity log for audit
	stageAuditGroupID = "kyc-stage-audit-group"

	// stageCompletedTopic carries one event per terminal verification-stage
	// outcome (identity check, bank challenge, payment confirmation)
	stageCompletedTopic = "kyc.stage.completed"
)

// Workers typically need the event stream and a repository; anything
// worker-specific is passed as an argument to the worker itself.
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream:  wk.KafkaStream,
		ActivityRepo: wk.ActivityRepo,
		Ctx:          wk.Ctx,
	}
}
