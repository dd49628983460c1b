package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	StreamName         = "JOBS"
	SubjectSync        = "jobs.sync"
	SubjectUnsubscribe = "jobs.unsubscribe"

	// Browser automation can legitimately run for minutes.
	ackWait   = 5 * time.Minute
	fetchWait = 2 * time.Second
)

// Queue is a durable at-least-once job queue on NATS JetStream. One subject per
// job type; consumers dispatch decoded payloads to injected handlers.
type Queue struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// Connect dials NATS and acquires a JetStream context.
func Connect(url string) (*Queue, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	return &Queue{nc: nc, js: js}, nil
}

// EnsureStream creates the JOBS stream if it does not exist.
func (q *Queue) EnsureStream() error {
	if info, err := q.js.StreamInfo(StreamName); err == nil && info != nil {
		return nil
	}

	_, err := q.js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"jobs.>"},
		Storage:   nats.FileStorage,
		Retention: nats.WorkQueuePolicy,
	})
	if err != nil {
		if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			return nil
		}
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// EnqueueSync publishes a sync job.
func (q *Queue) EnqueueSync(job SyncJob) error {
	return q.publish(SubjectSync, job)
}

// EnqueueUnsubscribe publishes an unsubscribe job.
func (q *Queue) EnqueueUnsubscribe(job UnsubscribeJob) error {
	return q.publish(SubjectUnsubscribe, job)
}

func (q *Queue) publish(subject string, job interface{}) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if _, err := q.js.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	return nil
}

// ConsumeSync runs a pull consumer over sync jobs with bounded parallelism.
// Blocks until ctx is cancelled and in-flight handlers return.
func (q *Queue) ConsumeSync(ctx context.Context, concurrency int, handler func(context.Context, SyncJob) error) error {
	if concurrency < 1 {
		concurrency = 1
	}
	return q.consume(ctx, SubjectSync, "sync-worker", SyncRetry, concurrency, func(ctx context.Context, data []byte) error {
		var job SyncJob
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("malformed sync job payload: %w", err)
		}
		return handler(ctx, job)
	})
}

// ConsumeUnsubscribe runs a strictly serialized pull consumer over unsubscribe
// jobs. Each one occupies a full browser session.
func (q *Queue) ConsumeUnsubscribe(ctx context.Context, handler func(context.Context, UnsubscribeJob) error) error {
	return q.consume(ctx, SubjectUnsubscribe, "unsubscribe-worker", UnsubscribeRetry, 1, func(ctx context.Context, data []byte) error {
		var job UnsubscribeJob
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("malformed unsubscribe job payload: %w", err)
		}
		return handler(ctx, job)
	})
}

func (q *Queue) consume(ctx context.Context, subject, durable string, policy RetryPolicy, concurrency int, handle func(context.Context, []byte) error) error {
	sub, err := q.js.PullSubscribe(subject, durable,
		nats.ManualAck(),
		nats.AckWait(ackWait),
		nats.MaxDeliver(policy.Attempts),
		nats.BindStream(StreamName),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	defer func() {
		_ = sub.Drain()
	}()

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		default:
		}

		msgs, err := sub.Fetch(concurrency, nats.MaxWait(fetchWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.Printf("[Queue] Fetch error on %s: %v", subject, err)
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range msgs {
			sem <- struct{}{}
			wg.Add(1)
			go func(m *nats.Msg) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := handle(ctx, m.Data); err != nil {
					delivered := 1
					if meta, merr := m.Metadata(); merr == nil {
						delivered = int(meta.NumDelivered)
					}
					delay := policy.Delay(delivered)
					log.Printf("[Queue] Job on %s failed (attempt %d/%d, retry in %s): %v",
						subject, delivered, policy.Attempts, delay, err)
					_ = m.NakWithDelay(delay)
					return
				}
				_ = m.Ack()
			}(msg)
		}
	}
}

// Connected reports whether the NATS connection is up.
func (q *Queue) Connected() bool {
	return q.nc != nil && q.nc.IsConnected()
}

// Close drains and closes the NATS connection.
func (q *Queue) Close() {
	if q.nc != nil {
		q.nc.Close()
	}
}
