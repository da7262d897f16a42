package queue

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends activity events.  Publishing is best-effort: callers log
// the error and carry on, a request never fails because of it.
type Publisher interface {
    Publish(ctx context.Context, ev ActivityEvent) error
}

// Nop drops every event.  It is used when EVENTS_ENABLED is false.
type Nop struct{}

func (Nop) Publish(context.Context, ActivityEvent) error { return nil }

// AMQPPublisher keeps one connection and channel open and re-dials after the
// broker drops them.
type AMQPPublisher struct {
    url  string
    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewAMQPPublisher(url string) *AMQPPublisher {
    return &AMQPPublisher{url: url}
}

// channel returns an open channel, dialing when needed.  Callers hold p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    if p.conn == nil || p.conn.IsClosed() {
        conn, err := amqp.Dial(p.url)
        if err != nil {
            return nil, err
        }
        p.conn = conn
    }
    ch, err := p.conn.Channel()
    if err != nil {
        return nil, err
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        return nil, err
    }
    p.ch = ch
    return ch, nil
}

// Publish sends ev as a persistent JSON message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ActivityEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        log.Printf("rabbitmq: channel unavailable: %v", err)
        return err
    }
    err = ch.PublishWithContext(ctx,
        "",                // default exchange
        ActivityQueueName, // routing key = queue name
        false,             // mandatory
        false,             // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            MessageId:    ev.ID,
            Type:         ev.Type,
            Timestamp:    time.Now().UTC(),
            Body:         body,
        })
    if err != nil {
        log.Printf("rabbitmq: publish %s failed: %v", ev.Type, err)
        _ = ch.Close()
        p.ch = nil
    }
    return err
}

// Close releases the connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.conn != nil {
        return p.conn.Close()
    }
    return nil
}
