package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/trip-billing/internal/lib/sl"
)

// ConsumerMessage читает очередь queueName и передаёт тела сообщений handler.
// Успешно обработанные сообщения подтверждаются, при ошибке сообщение
// возвращается в очередь. Одновременно обрабатывается не больше prefetchCount сообщений.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func(context.Context, []byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go dispatch(ctx, log.With(slog.String("queue", queueName)), delivery, handler)
	return nil
}

func dispatch(ctx context.Context, log *slog.Logger, delivery <-chan amqp.Delivery, handler func(context.Context, []byte) error) {
	sem := make(chan struct{}, prefetchCount)
	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				if err := handler(ctx, d.Body); err != nil {
					log.Error("failed to handle message", slog.String("message_id", d.MessageId), sl.Err(err))
					if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		case <-ctx.Done():
			return
		}
	}
}
