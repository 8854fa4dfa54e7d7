package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/logger"
)

// EventSink persists a dequeued event.
type EventSink interface {
	Store(ctx context.Context, ev *domain.AnalyticsEvent) error
}

// Consumer long-polls the queue and stores events. A message is deleted
// only after it is stored, so delivery is at-least-once. Malformed messages
// are dropped.
type Consumer struct {
	client   SQSAPI
	queueURL string
	sink     EventSink

	backoff time.Duration
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewConsumer creates a consumer for queueURL.
func NewConsumer(client SQSAPI, queueURL string, sink EventSink) *Consumer {
	return &Consumer{client: client, queueURL: queueURL, sink: sink, backoff: 5 * time.Second}
}

// Start begins polling in a goroutine. Starting twice is an error.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("tracking consumer already started")
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	logger.Info("SQS analytics consumer started", "queue", c.queueURL)
	go c.poll(ctx)
	return nil
}

// Stop cancels polling and waits for the loop to exit.
func (c *Consumer) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Consumer) poll(ctx context.Context) {
	defer close(c.done)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.receiveOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("SQS receive error", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
		}
	}
}

// receiveOnce handles one long-poll batch.
func (c *Consumer) receiveOnce(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
	})
	if err != nil {
		return err
	}
	for _, msg := range out.Messages {
		var ev domain.AnalyticsEvent
		if msg.Body == nil || json.Unmarshal([]byte(*msg.Body), &ev) != nil {
			logger.Warn("SQS bad analytics message dropped")
			c.deleteMessage(ctx, msg.ReceiptHandle)
			continue
		}
		ev.ID = 0
		if err := c.sink.Store(ctx, &ev); err != nil {
			logger.Error("storing analytics event failed", "path", ev.Path, "error", err)
			continue
		}
		c.deleteMessage(ctx, msg.ReceiptHandle)
	}
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, handle *string) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: handle,
	})
	if err != nil {
		logger.Warn("SQS delete failed", "error", err)
	}
}
