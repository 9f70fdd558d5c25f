package rabbitmq

import (
	"classifieds-browser/internal/core/port"
	"classifieds-browser/pkg/rabbitmq/rabbitmq_common"
	"fmt"
)

// LoggerBridge передает логи пакета pkg/rabbitmq в port.LoggerPort.
type LoggerBridge struct {
	logger port.LoggerPort
}

func NewLoggerBridge(logger port.LoggerPort) rabbitmq_common.Logger {
	return &LoggerBridge{logger: logger.WithFields(port.Fields{"component": "rabbitmq"})}
}

func toFields(keysAndValues []interface{}) port.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(port.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 < len(keysAndValues) {
			fields[key] = keysAndValues[i+1]
		} else {
			fields[key] = "(missing)"
		}
	}
	return fields
}

func (b *LoggerBridge) Debug(msg string, keysAndValues ...interface{}) {
	b.logger.Debug(msg, toFields(keysAndValues))
}

func (b *LoggerBridge) Info(msg string, keysAndValues ...interface{}) {
	b.logger.Info(msg, toFields(keysAndValues))
}

func (b *LoggerBridge) Warn(msg string, keysAndValues ...interface{}) {
	b.logger.Warn(msg, toFields(keysAndValues))
}

func (b *LoggerBridge) Error(err error, msg string, keysAndValues ...interface{}) {
	b.logger.Error(msg, err, toFields(keysAndValues))
}
