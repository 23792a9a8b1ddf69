package middleware

import (
	"context"
	"log"
	"time"

	"analytics-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	logBatchSize     = 100
	logFlushInterval = 5 * time.Second
)

// RequestLogSink receives batches of request logs; implemented by
// repository.RequestLogRepository.
type RequestLogSink interface {
	CreateBatch(ctx context.Context, logs []models.RequestLog) error
}

// RequestLogger records every handled request into postgres through a
// buffered channel and a background batching worker, so logging never
// blocks the request path.
type RequestLogger struct {
	sink    RequestLogSink
	logs    chan models.RequestLog
	done    chan struct{}
	stopped chan struct{}
}

func NewRequestLogger(sink RequestLogSink, bufferSize int) *RequestLogger {
	l := &RequestLogger{
		sink:    sink,
		logs:    make(chan models.RequestLog, bufferSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go l.run()

	return l
}

func (l *RequestLogger) run() {
	defer close(l.stopped)

	batch := make([]models.RequestLog, 0, logBatchSize)
	ticker := time.NewTicker(logFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-l.logs:
			batch = append(batch, entry)

			if len(batch) >= logBatchSize {
				l.flush(batch)
				batch = make([]models.RequestLog, 0, logBatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				l.flush(batch)
				batch = make([]models.RequestLog, 0, logBatchSize)
			}
		case <-l.done:
			// Drain whatever is queued before exiting.
			for {
				select {
				case entry := <-l.logs:
					batch = append(batch, entry)
				default:
					l.flush(batch)
					return
				}
			}
		}
	}
}

func (l *RequestLogger) flush(batch []models.RequestLog) {
	if len(batch) == 0 {
		return
	}

	if err := l.sink.CreateBatch(context.Background(), batch); err != nil {
		log.Printf("Failed to insert request logs: %v", err)
	}
}

// Close flushes pending entries and waits for the worker to stop.
func (l *RequestLogger) Close() {
	close(l.done)
	<-l.stopped
}

func (l *RequestLogger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)

		var appID *uuid.UUID
		if appIDValue, exists := c.Get(ContextAppID); exists {
			if id, ok := appIDValue.(uuid.UUID); ok {
				appID = &id
			}
		}

		entry := models.RequestLog{
			Timestamp:      start,
			AppID:          appID,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(duration.Milliseconds()),
			IPAddress:      c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		}

		select {
		case l.logs <- entry:
		default:
			// Channel full, drop the entry rather than block.
			log.Println("Request log channel full, skipping log entry")
		}
	}
}
