package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/cradoe/kycflow/internal/handler"
	"github.com/cradoe/kycflow/internal/models"
	"github.com/cradoe/kycflow/internal/repository"
	"github.com/cradoe/kycflow/internal/stream"
)

// StageAuditWorker consumes stage-completed events and records each one in
// the activity log, keyed by trace identifier, so operators can reconstruct
// any verification attempt after the fact.
func (wk *Worker) StageAuditWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: stageAuditGroupID,
		Topic:   stageCompletedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			message := e.Value
			log.Printf("Stage event received on %s: %s\n", e.TopicPartition, string(e.Value))

			var stageEvent handler.StageEvent
			if err := json.Unmarshal(message, &stageEvent); err != nil {
				log.Printf("Error decoding stage event: %v", err)
				continue
			}

			wk.recordStageOutcome(&stageEvent)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) recordStageOutcome(event *handler.StageEvent) {
	entity := repository.ActivityLogIdentityEntity
	if event.Stage != handler.StageIdentity {
		entity = repository.ActivityLogChallengeEntity
	}

	_, err := wk.ActivityRepo.Insert(&models.ActivityLog{
		Entity:      entity,
		EntityId:    event.EntityID,
		Description: event.Stage + " stage completed with status " + event.Status + " (trace " + event.TraceID + ")",
	})
	if err != nil {
		log.Printf("Error recording stage outcome: %v", err)
	}
}
