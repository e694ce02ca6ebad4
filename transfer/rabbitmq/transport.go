// Package rabbitmq carries job envelopes over RabbitMQ queues.
package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/chosen1st/sqoop/bean"
	"github.com/chosen1st/sqoop/document"
	"github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

// Delivery is one consumed envelope
type Delivery struct {
	MessageID string
	Queue     string
	Timestamp time.Time
	Jobs      []model.Job

	acker amqp.Acknowledger
	tag   uint64
}

// Ack acknowledges the envelope
func (d Delivery) Ack() error {
	if d.acker == nil {
		return nil
	}
	return d.acker.Ack(d.tag, false)
}

// Nack rejects the envelope and optionally requeues it
func (d Delivery) Nack(requeue bool) error {
	if d.acker == nil {
		return nil
	}
	return d.acker.Nack(d.tag, false, requeue)
}

// Transport publishes and consumes job envelopes
type Transport struct {
	connection     *amqp.Connection
	channel        *amqp.Channel
	options        Options
	schemas        bean.SchemaSource
	logger         *slog.Logger
	declaredQueues map[string]bool
	consumers      map[string]consumer
	mu             sync.RWMutex
	notifyClose    chan *amqp.Error
	isConnected    bool
	closed         bool

	// reconnect redials after the broker drops the connection. The caller
	// holds the lock.
	reconnect func() error
}

type consumer struct {
	ctx  context.Context
	out  chan<- Delivery
	errc chan error
}

// NewTransport creates a new RabbitMQ transport. Consumed envelopes are bound
// to the skeletons of schemas when it is non-nil.
func NewTransport(options Options, schemas bean.SchemaSource) *Transport {
	t := &Transport{
		options:        options,
		schemas:        schemas,
		logger:         slog.Default(),
		declaredQueues: make(map[string]bool),
		consumers:      make(map[string]consumer),
	}
	t.reconnect = t.connect
	return t
}

// SetLogger sets the logger for the transport
func (r *Transport) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Connect establishes connection to RabbitMQ
func (r *Transport) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = false
	if err := r.connect(); err != nil {
		return err
	}

	if r.options.Queue != "" {
		if err := r.declareQueue(r.options.Queue, r.options.QueueOptions); err != nil {
			return errors.NewBrokerError("declare_queue", r.options.Queue, err)
		}
	}
	return nil
}

// connect opens the connection and channel and starts close monitoring.
// The caller must hold the lock.
func (r *Transport) connect() error {
	conn, err := amqp.Dial(r.options.URI)
	if err != nil {
		return errors.NewConnectionError(r.redactedURI(),
			fmt.Errorf("failed to connect to RabbitMQ: %w", err))
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return errors.NewConnectionError(r.redactedURI(),
			fmt.Errorf("failed to open channel: %w", err))
	}

	if r.options.PrefetchCount > 0 {
		if err := ch.Qos(r.options.PrefetchCount, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return errors.NewConnectionError(r.redactedURI(),
				fmt.Errorf("failed to set QoS: %w", err))
		}
	}

	r.connection = conn
	r.channel = ch
	// Queues must be declared again on a fresh channel
	r.declaredQueues = make(map[string]bool)

	r.notifyClose = make(chan *amqp.Error, 1)
	r.connection.NotifyClose(r.notifyClose)
	r.isConnected = true

	if r.options.ReconnectEnabled {
		go r.handleReconnection(r.notifyClose)
	}

	return nil
}

// handleReconnection redials until it succeeds or the transport is closed,
// then restarts the registered consumers. A consumer that cannot be
// restarted gets the error on its Consume call.
func (r *Transport) handleReconnection(notifyClose <-chan *amqp.Error) {
	err, ok := <-notifyClose
	if !ok || err == nil {
		return // Graceful shutdown
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.isConnected = false
	r.mu.Unlock()
	r.logger.Warn("Connection closed, reconnecting", "error", err)

	for {
		time.Sleep(r.options.ReconnectDelay)

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			r.logger.Info("Transport closed, giving up reconnect")
			return
		}
		var dialErr error
		if !r.isConnected {
			dialErr = r.reconnect()
		}
		r.mu.Unlock()

		if dialErr == nil {
			break
		}
		r.logger.Warn("Reconnect failed", "error", dialErr)
	}

	r.logger.Info("Reconnected to RabbitMQ")
	r.restartConsumers()
}

// Close closes the RabbitMQ connection
func (r *Transport) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.isConnected = false
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.connection != nil {
		return r.connection.Close()
	}
	return nil
}

// Health checks the RabbitMQ connection health
func (r *Transport) Health() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.isConnected || r.connection == nil || r.connection.IsClosed() {
		return errors.ErrNotConnected
	}
	return nil
}

// Type returns the transport type
func (r *Transport) Type() string {
	return "rabbitmq"
}

// DeclareQueue declares a durable queue with the given arguments
func (r *Transport) DeclareQueue(ctx context.Context, name string, options QueueOptions) error {
	if name == "" {
		return errors.ErrNoQueue
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel == nil {
		return errors.ErrNotConnected
	}
	if err := r.declareQueue(name, options); err != nil {
		return errors.NewBrokerError("declare_queue", name, err)
	}
	return nil
}

// Publish sends jobs to queue as one envelope and returns its message id
func (r *Transport) Publish(ctx context.Context, queue string, includeSensitive bool, jobs ...model.Job) (string, error) {
	if queue == "" {
		return "", errors.ErrNoQueue
	}

	channel, err := r.getChannel()
	if err != nil {
		return "", err
	}

	if err := r.ensureQueue(queue); err != nil {
		return "", errors.NewBrokerError("ensure_queue", queue, err)
	}

	body, err := encode(includeSensitive, jobs)
	if err != nil {
		return "", err
	}

	messageID := uuid.NewString()
	err = channel.PublishWithContext(
		ctx,
		r.options.Exchange,
		queue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    messageID,
		})
	if err != nil {
		return "", errors.NewBrokerError("publish", queue, err)
	}

	r.logger.Debug("Published envelope", "queue", queue, "message_id", messageID, "jobs", len(jobs))
	return messageID, nil
}

// Consume delivers the envelopes arriving on queue to out and blocks until
// ctx is done. out stays open. Envelopes that cannot be restored are
// rejected without requeue.
func (r *Transport) Consume(ctx context.Context, queue string, out chan<- Delivery) error {
	if queue == "" {
		return errors.ErrNoQueue
	}

	errc := make(chan error, 1)
	r.mu.Lock()
	r.consumers[queue] = consumer{ctx: ctx, out: out, errc: errc}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.consumers, queue)
		r.mu.Unlock()
	}()

	r.logger.Info("Starting RabbitMQ consumer", "queue", queue)
	if err := r.startConsumer(ctx, queue, out); err != nil {
		return err
	}
	return r.await(ctx, queue, errc)
}

// await blocks until ctx is done or the consumer could not be restarted
// after a reconnect
func (r *Transport) await(ctx context.Context, queue string, errc <-chan error) error {
	select {
	case <-ctx.Done():
		r.logger.Info("RabbitMQ consumer stopped", "queue", queue)
		return nil
	case err := <-errc:
		r.logger.Error("RabbitMQ consumer lost", "queue", queue, "error", err)
		return err
	}
}

func (r *Transport) restartConsumers() {
	r.mu.RLock()
	consumers := make(map[string]consumer, len(r.consumers))
	for queue, c := range r.consumers {
		consumers[queue] = c
	}
	r.mu.RUnlock()

	for queue, c := range consumers {
		if c.ctx.Err() != nil {
			continue
		}
		if err := r.startConsumer(c.ctx, queue, c.out); err != nil {
			r.logger.Error("Failed to restart consumer", "queue", queue, "error", err)
			select {
			case c.errc <- err:
			default:
			}
		}
	}
}

func (r *Transport) startConsumer(ctx context.Context, queue string, out chan<- Delivery) error {
	if err := r.ensureQueue(queue); err != nil {
		return errors.NewBrokerError("ensure_queue", queue, err)
	}

	channel, err := r.getChannel()
	if err != nil {
		return err
	}

	deliveries, err := channel.Consume(
		queue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return errors.NewBrokerError("consume", queue, err)
	}

	go r.handleDeliveries(ctx, queue, deliveries, out)
	return nil
}

// handleDeliveries forwards incoming messages until ctx is done or the
// channel closes
func (r *Transport) handleDeliveries(ctx context.Context, queue string, deliveries <-chan amqp.Delivery, out chan<- Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				r.logger.Warn("Delivery channel closed", "queue", queue)
				return
			}
			if !r.handleDelivery(ctx, queue, d, out) {
				return
			}
		}
	}
}

// handleDelivery restores one message and hands it to out. It reports false
// once ctx is done.
func (r *Transport) handleDelivery(ctx context.Context, queue string, d amqp.Delivery, out chan<- Delivery) bool {
	jobs, err := decode(d.Body, r.schemas)
	if err != nil {
		if nackErr := d.Nack(false, false); nackErr != nil {
			r.logger.Error("Failed to nack envelope after restore error", "error", nackErr)
		}
		r.logger.Error("Failed to restore envelope", "queue", queue, "message_id", d.MessageId, "error", err)
		return true
	}

	delivery := Delivery{
		MessageID: d.MessageId,
		Queue:     queue,
		Timestamp: d.Timestamp,
		Jobs:      jobs,
		acker:     d.Acknowledger,
		tag:       d.DeliveryTag,
	}

	select {
	case <-ctx.Done():
		// Put the envelope back on the queue
		if err := d.Nack(false, true); err != nil {
			r.logger.Error("Failed to nack envelope during shutdown", "error", err)
		}
		return false
	case out <- delivery:
		r.logger.Debug("Envelope delivered", "queue", queue, "jobs", len(jobs))
		return true
	}
}

// getChannel returns the channel if connected, otherwise returns ErrNotConnected
func (r *Transport) getChannel() (*amqp.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.channel == nil {
		return nil, errors.ErrNotConnected
	}
	return r.channel, nil
}

// ensureQueue makes sure a queue is declared
func (r *Transport) ensureQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel == nil {
		return errors.ErrNotConnected
	}
	if r.declaredQueues[name] {
		return nil
	}

	options := QueueOptions{}
	if name == r.options.Queue {
		options = r.options.QueueOptions
	}
	return r.declareQueue(name, options)
}

// declareQueue expects the caller to hold the lock
func (r *Transport) declareQueue(name string, options QueueOptions) error {
	_, err := r.channel.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		options.table(),
	)
	if err != nil {
		return err
	}

	r.declaredQueues[name] = true
	return nil
}

func (r *Transport) redactedURI() string {
	uri, err := url.Parse(r.options.URI)
	if err != nil {
		return r.options.URI
	}
	return uri.Redacted()
}

func encode(includeSensitive bool, jobs []model.Job) ([]byte, error) {
	doc, err := bean.NewJobBean(jobs...).Extract(includeSensitive)
	if err != nil {
		return nil, errors.NewSerializationError("json", err)
	}
	return document.Marshal(doc)
}

func decode(body []byte, schemas bean.SchemaSource) ([]model.Job, error) {
	doc, err := document.ParseBytes(body)
	if err != nil {
		return nil, err
	}

	b := bean.New(bean.WithSchemaSource(schemas))
	if err := b.Restore(doc); err != nil {
		return nil, err
	}
	return b.Jobs(), nil
}
