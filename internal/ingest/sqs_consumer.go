// Package ingest consumes violation reports pushed by parking lot cameras
// through SQS.
package ingest

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/service"
)

// SQSConsumer long-polls a queue for camera violation reports and feeds them
// into the violation service.
type SQSConsumer struct {
	sqsClient  *sqs.Client
	queueURL   string
	violations service.ViolationService
}

// NewSQSConsumer creates a consumer for the given queue URL.
func NewSQSConsumer(client *sqs.Client, queueURL string, violations service.ViolationService) *SQSConsumer {
	return &SQSConsumer{
		sqsClient:  client,
		queueURL:   queueURL,
		violations: violations,
	}
}

// Start polls until the context is cancelled. Messages are deleted only
// after successful processing; failures reappear after the visibility
// timeout.
func (c *SQSConsumer) Start(ctx context.Context) {
	log.Printf("SQS consumer: listening on %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS consumer: context cancelled, stopping")
			return
		default:
			result, err := c.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            &c.queueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   60,
			})
			if err != nil {
				log.Printf("SQS consumer: receive failed: %v", err)
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, message := range result.Messages {
				if message.Body == nil {
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}

				var report models.ReportViolationRequest
				if err := json.Unmarshal([]byte(*message.Body), &report); err != nil {
					// Malformed messages would loop forever; drop them.
					log.Printf("SQS consumer: dropping malformed message: %v", err)
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}

				if _, err := c.violations.ReportViolation(ctx, &report); err != nil {
					log.Printf("SQS consumer: failed to process report for slot %s: %v", report.SlotNumber, err)
					continue
				}
				c.deleteMessage(ctx, message.ReceiptHandle)
			}
		}
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS consumer: failed to delete message: %v", err)
	}
}
