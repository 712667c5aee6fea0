package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/planeat-app/PLE-ReservationService/pkg/metrics"
)

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Exchange для доменных событий жизненного цикла броней
const exchangeName = "reservation.events"

// Publisher публикует доменные события в RabbitMQ
// Публикация fire-and-forget: ошибки логируются, но никогда не прерывают
// основной поток обработки запроса
type Publisher struct {
	url     string
	log     Logger
	metrics *metrics.Metrics
	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
}

// NewPublisher создает издателя и устанавливает соединение с брокером
// Ошибка соединения не фатальна - издатель попробует переподключиться
// при следующей публикации. metrics может быть nil, если метрики выключены
func NewPublisher(url string, m *metrics.Metrics, log Logger) *Publisher {
	p := &Publisher{url: url, log: log, metrics: m}
	if err := p.connect(); err != nil {
		log.Warn("RabbitMQ unavailable at startup, will retry on publish: %v", err)
	}
	return p
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	// Durable topic exchange, объявление идемпотентно
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}

	if err := p.connect(); err != nil {
		return nil, err
	}
	return p.ch, nil
}

// publish сериализует событие и отправляет его с ключом маршрутизации topic
func (p *Publisher) publish(ctx context.Context, topic string, event interface{}) error {
	ch, err := p.channel()
	if err != nil {
		p.log.Error("Notifier: connection failed for %s: %v", topic, err)
		p.observe(topic, "error")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Notifier: marshal event %s failed: %v", topic, err)
		p.observe(topic, "error")
		return err
	}

	err = ch.PublishWithContext(ctx,
		exchangeName,
		topic,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.log.Error("Notifier: publish %s failed: %v", topic, err)
		p.observe(topic, "error")
		return err
	}

	p.log.Debug("Notifier: published %s", topic)
	p.observe(topic, "success")
	return nil
}

// observe учитывает публикацию в метриках, категория - префикс топика
func (p *Publisher) observe(topic, result string) {
	if p.metrics == nil {
		return
	}
	category := topic
	if i := strings.IndexByte(topic, '.'); i > 0 {
		category = topic[:i]
	}
	p.metrics.NotificationsTotal.WithLabelValues(category, result).Inc()
}

// ReservationStatusChanged публикует событие перехода статуса брони
func (p *Publisher) ReservationStatusChanged(ctx context.Context, event ReservationStatusChangedEvent) {
	_ = p.publish(ctx, TopicReservationStatusChanged, event)
}

// VenueConfirmationRequested публикует напоминание заведению подтвердить визит
func (p *Publisher) VenueConfirmationRequested(ctx context.Context, event VenueConfirmationRequestedEvent) {
	_ = p.publish(ctx, TopicVenueConfirmationRequested, event)
}

// DisputeOpened публикует событие объявления неявки
func (p *Publisher) DisputeOpened(ctx context.Context, event DisputeOpenedEvent) {
	_ = p.publish(ctx, TopicDisputeOpened, event)
}

// DisputeResolved публикует событие исхода спора
func (p *Publisher) DisputeResolved(ctx context.Context, event DisputeResolvedEvent) {
	_ = p.publish(ctx, TopicDisputeResolved, event)
}

// SanctionImposed публикует событие наложения санкции
func (p *Publisher) SanctionImposed(ctx context.Context, event SanctionImposedEvent) {
	_ = p.publish(ctx, TopicSanctionImposed, event)
}

// SanctionLifted публикует событие снятия санкции
func (p *Publisher) SanctionLifted(ctx context.Context, event SanctionLiftedEvent) {
	_ = p.publish(ctx, TopicSanctionLifted, event)
}

// Close закрывает соединение с брокером
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
