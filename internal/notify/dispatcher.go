package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"elearning-quiz-service/internal/domain"
)

// ErrQueueFull is returned by Send when the mail was dropped.
var ErrQueueFull = errors.New("notification queue full")

// Counters receives dispatcher outcomes. A nil Counters is allowed.
type Counters interface {
	MailQueued()
	MailDropped()
	MailFailed()
}

// Dispatcher decouples callers from mail delivery: Send enqueues and returns,
// a single worker publishes in order.
type Dispatcher struct {
	publisher Publisher
	counters  Counters
	queue     chan domain.Mail
	timeout   time.Duration
}

func NewDispatcher(publisher Publisher, counters Counters, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		publisher: publisher,
		counters:  counters,
		queue:     make(chan domain.Mail, size),
		timeout:   10 * time.Second,
	}
}

// Send never blocks. A full queue drops the mail.
func (d *Dispatcher) Send(_ context.Context, mail domain.Mail) error {
	select {
	case d.queue <- mail:
		if d.counters != nil {
			d.counters.MailQueued()
		}
		return nil
	default:
		log.Printf("notify: queue full, dropping %q mail to %s", mail.Template, mail.To)
		if d.counters != nil {
			d.counters.MailDropped()
		}
		return ErrQueueFull
	}
}

// Run publishes queued mails until ctx is done, then drains what is left.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case mail := <-d.queue:
			d.publish(mail)
		case <-ctx.Done():
			d.drain()
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case mail := <-d.queue:
			d.publish(mail)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(mail domain.Mail) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.publisher.Publish(ctx, mail); err != nil {
		log.Printf("notify: deliver %q mail to %s: %v", mail.Template, mail.To, err)
		if d.counters != nil {
			d.counters.MailFailed()
		}
	}
}
