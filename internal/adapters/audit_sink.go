package adapters

import (
	"salesrep_portal/internal/audit"
	"salesrep_portal/platform/config"
	"salesrep_portal/platform/logger"
)

// NewAuditSink always logs audit events and additionally publishes them to
// the broker when one is configured. The returned close func releases the
// broker connection.
func NewAuditSink(cfg config.AMQPConfig, log *logger.Logger) (audit.Sink, func() error, error) {
	logSink := audit.NewLogSink(log)
	if !cfg.IsAMQPEnabled() {
		return logSink, func() error { return nil }, nil
	}

	amqpSink, err := audit.NewAMQPSink(cfg.GetAMQPURL(), cfg.GetAuditExchange())
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit events published to broker", "exchange", cfg.GetAuditExchange())
	return audit.MultiSink{logSink, amqpSink}, amqpSink.Close, nil
}
