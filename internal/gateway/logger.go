package gateway

import (
	"go.uber.org/zap"
)

// GatewayLogger provides structured logging for socket events
type GatewayLogger struct {
	logger *zap.Logger
}

// NewGatewayLogger creates a new gateway logger
func NewGatewayLogger() *GatewayLogger {
	return &GatewayLogger{
		logger: zap.L().With(zap.String("component", "gateway")),
	}
}

// Info logs info level event
func (l *GatewayLogger) Info(event, userID, connID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID),
		zap.String("conn_id", connID),
	}, fields...)
	l.logger.Info("gateway_event", allFields...)
}

// Error logs error level event
func (l *GatewayLogger) Error(event, userID, connID string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID),
		zap.String("conn_id", connID),
		zap.Error(err),
	}, fields...)
	l.logger.Error("gateway_error", allFields...)
}

// Warn logs warning level event
func (l *GatewayLogger) Warn(event, userID, connID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID),
		zap.String("conn_id", connID),
	}, fields...)
	l.logger.Warn("gateway_warning", allFields...)
}

// Debug logs debug level event
func (l *GatewayLogger) Debug(event string, fields ...zap.Field) {
	l.logger.Debug(event, fields...)
}
