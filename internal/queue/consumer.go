package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityLog appends one line per event to a file.
type ActivityLog struct {
    mu sync.Mutex
    w  io.Writer
}

// OpenActivityLog opens path for appending, creating parent directories.
func OpenActivityLog(path string) (*ActivityLog, *os.File, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return nil, nil, fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return nil, nil, fmt.Errorf("open log file: %w", err)
    }
    return NewActivityLog(f), f, nil
}

func NewActivityLog(w io.Writer) *ActivityLog {
    return &ActivityLog{w: w}
}

// Append decodes one message body and writes its line.
func (l *ActivityLog) Append(body []byte) error {
    var ev ActivityEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    line := fmt.Sprintf("[%s] %s | id=%s | actor=%d", ev.OccurredAt, ev.Type, ev.ID, ev.ActorID)
    if ev.TargetID != 0 {
        line += fmt.Sprintf(" | target=%d", ev.TargetID)
    }
    if ev.AnnonceID != 0 {
        line += fmt.Sprintf(" | annonce=%d", ev.AnnonceID)
    }
    if ev.MessageID != 0 {
        line += fmt.Sprintf(" | message=%d", ev.MessageID)
    }
    if ev.Stars != 0 {
        line += fmt.Sprintf(" | stars=%d", ev.Stars)
    }

    l.mu.Lock()
    defer l.mu.Unlock()
    if _, err := io.WriteString(l.w, line+"\n"); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// StartActivityConsumer connects to RabbitMQ, declares the activity queue
// and appends every delivery to sink.  It reconnects with backoff until ctx
// is cancelled.  Undecodable messages are rejected without requeue.
func StartActivityConsumer(ctx context.Context, url string, sink *ActivityLog) {
    backoff := time.Second
    for ctx.Err() == nil {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            sleep(ctx, backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(ctx, conn, sink); err != nil && ctx.Err() == nil {
            log.Printf("activity-consumer: consume loop ended: %v; reconnecting", err)
            sleep(ctx, 2*time.Second)
        }
        _ = conn.Close()
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, sink *ActivityLog) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("activity-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ActivityQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := sink.Append(d.Body); err != nil {
                log.Printf("activity-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func sleep(ctx context.Context, d time.Duration) {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
    case <-t.C:
    }
}
