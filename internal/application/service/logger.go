package service

// Logger is the structured logger the services write to. utils.KVLogger
// adapts a zap logger to it.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
