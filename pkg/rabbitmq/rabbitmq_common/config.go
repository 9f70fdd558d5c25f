package rabbitmq_common

import (
	"errors"
	"net/url"
	"time"
)

// Config - общие параметры подключения для производителей и потребителей.
type Config struct {
	URL string
	// ReconnectInterval - период проверки соединения. По умолчанию 10 секунд.
	ReconnectInterval time.Duration
}

// Validate проверяет, что URL задан и имеет схему amqp или amqps.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("rabbitmq: URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.New("rabbitmq: URL is malformed")
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return errors.New("rabbitmq: URL scheme must be amqp or amqps")
	}
	return nil
}

func (c Config) reconnectInterval() time.Duration {
	if c.ReconnectInterval <= 0 {
		return 10 * time.Second
	}
	return c.ReconnectInterval
}
