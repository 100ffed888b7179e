package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"teambot/internal/app"
	"teambot/internal/model"
	"teambot/internal/pkg/pdfextract"
	"teambot/internal/platform/rabbitmq"
)

// IngestWorker consumes document ingestion jobs: text extraction,
// chunking, and status transitions. A failed job is republished with an
// incremented attempt counter until maxRetries, then marked failed.
type IngestWorker struct {
	conn       *amqp.Connection
	docs       app.DocumentStore
	retrieval  *app.RetrievalService
	queue      app.IngestQueue
	queueName  string
	maxRetries int
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestWorker(
	conn *amqp.Connection,
	docs app.DocumentStore,
	retrieval *app.RetrievalService,
	queue app.IngestQueue,
	queueName string,
	maxRetries int,
	logger *zap.Logger,
) *IngestWorker {
	return &IngestWorker{
		conn:       conn,
		docs:       docs,
		retrieval:  retrieval,
		queue:      queue,
		queueName:  queueName,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var job rabbitmq.IngestJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					w.logger.Error("decode ingest job failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := w.handle(workerCtx, job); err != nil {
					w.logger.Warn("ingest job failed",
						zap.String("document_id", job.DocumentID),
						zap.Int("attempt", job.Attempt),
						zap.Error(err),
					)
					w.retryOrFail(workerCtx, job, err)
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *IngestWorker) handle(ctx context.Context, job rabbitmq.IngestJob) error {
	doc, err := w.docs.GetByID(job.DocumentID)
	if err != nil {
		return err
	}
	if doc == nil {
		// Deleted before processing; nothing to do.
		return nil
	}

	if err := w.docs.UpdateStatus(job.DocumentID, model.DocumentStatusProcessing); err != nil {
		return err
	}
	if err := w.docs.IncrementAttempts(job.DocumentID); err != nil {
		w.logger.Warn("increment attempts failed",
			zap.String("document_id", job.DocumentID), zap.Error(err))
	}

	content, err := extractText(job)
	if err != nil {
		return fmt.Errorf("extract text failed: %w", err)
	}

	if err := w.retrieval.ProcessDocument(ctx, job.BotID, job.DocumentID, content); err != nil {
		return err
	}
	return w.retrieval.IndexDocument(ctx, job.DocumentID)
}

// retryOrFail republishes the job with a bumped attempt counter, or
// marks the document failed once retries are exhausted.
func (w *IngestWorker) retryOrFail(ctx context.Context, job rabbitmq.IngestJob, cause error) {
	if job.Attempt+1 < w.maxRetries {
		job.Attempt++
		if err := w.queue.Publish(ctx, job); err == nil {
			return
		}
		w.logger.Error("republish ingest job failed",
			zap.String("document_id", job.DocumentID), zap.Error(cause))
	}
	if err := w.docs.MarkFailed(job.DocumentID, cause.Error()); err != nil {
		w.logger.Error("mark document failed errored",
			zap.String("document_id", job.DocumentID), zap.Error(err))
	}
}

func extractText(job rabbitmq.IngestJob) (string, error) {
	ext := strings.ToLower(filepath.Ext(job.Filename))
	if ext == ".pdf" || job.MimeType == "application/pdf" {
		return pdfextract.ExtractText(bytes.NewReader(job.Payload))
	}
	return string(job.Payload), nil
}

func (w *IngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
