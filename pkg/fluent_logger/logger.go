package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит параметры подключения к Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или имя сервиса в Docker
	Port      int    // обычно 24224
	TagPrefix string // общий префикс тегов, обычно имя приложения
	Timeout   time.Duration
	// Async - записи буферизуются и отправляются в фоне, Post не блокируется
	Async bool
}

// NewClient создает клиент для Fluent Bit.
// Успешное создание не гарантирует соединение: в асинхронном режиме первая ошибка
// проявится только при отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 24224
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}

	logger, err := fluent.New(fluent.Config{
		FluentHost:         cfg.Host,
		FluentPort:         cfg.Port,
		TagPrefix:          cfg.TagPrefix,
		Timeout:            cfg.Timeout,
		Async:              cfg.Async,
		SubSecondPrecision: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return logger, nil
}
