package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/rabbitmq/amqp091-go"
)

const mailExchange = "notification.events"

// Publisher hands a mail to the delivery backend.
type Publisher interface {
	Publish(ctx context.Context, mail domain.Mail) error
	Close() error
}

// AMQPPublisher publishes mails as JSON onto a topic exchange. A downstream
// mailer renders the template and delivers it.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
}

// NewAMQPPublisher connects to RabbitMQ. An empty URI gives a publisher that
// only logs.
func NewAMQPPublisher(rabbitURI string) (*AMQPPublisher, error) {
	if rabbitURI == "" {
		log.Println("notify: amqp uri is empty, mail publishing is disabled")
		return &AMQPPublisher{exchange: mailExchange}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(mailExchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Printf("notify: publishing mails to exchange %s", mailExchange)
	return &AMQPPublisher{conn: conn, channel: channel, exchange: mailExchange, enabled: true}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, mail domain.Mail) error {
	if !p.enabled {
		log.Printf("notify: publishing disabled, skipping %q mail to %s", mail.Template, mail.To)
		return nil
	}
	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}
	err = p.channel.PublishWithContext(ctx, p.exchange, "mail."+mail.Template, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
		Headers:      amqp091.Table{"template": mail.Template},
	})
	if err != nil {
		return fmt.Errorf("publish mail: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		log.Printf("notify: close channel: %v", err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("close rabbitmq connection: %w", err)
	}
	return nil
}
