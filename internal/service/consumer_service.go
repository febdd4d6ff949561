package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-butler-be/internal/dto"
	"ai-butler-be/pkg/assistant/distill"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the distillation topic: for every finished
// conversational turn it asks the distiller whether the exchange is
// worth remembering and persists the resulting note.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	noteService INoteService
	distiller   *distill.Distiller
	topK        int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	noteService INoteService,
	distiller *distill.Distiller,
	topK int,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		noteService: noteService,
		distiller:   distiller,
		topK:        topK,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishDistillMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal distill message: %v", err)
		msg.Ack() // invalid payloads never become valid, do not retry
		return
	}

	// Nearby notes are fetched against the whole exchange, not just the
	// user half, so notes seeded by earlier assistant replies dedup too.
	exchange := fmt.Sprintf("User: %s\nAssistant: %s", payload.UserMessage, payload.AssistantMessage)
	existing, err := cs.noteService.SearchSimilar(ctx, exchange, cs.topK)
	if err != nil {
		log.Printf("[ERROR] Failed to fetch similar notes: %v", err)
		msg.Nack()
		return
	}

	note, ok, err := cs.distiller.Distill(ctx, payload.UserMessage, payload.AssistantMessage, existing)
	if err != nil {
		log.Printf("[ERROR] Distillation call failed: %v", err)
		msg.Nack()
		return
	}
	if !ok {
		msg.Ack()
		return
	}

	if _, err := cs.noteService.Add(ctx, note); err != nil {
		log.Printf("[ERROR] Failed to persist distilled note: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Distilled note stored for session %s", payload.SessionId)
	msg.Ack()
}
