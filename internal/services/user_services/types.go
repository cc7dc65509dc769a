// File: internal/services/user_services/types.go
package user_services

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// maskEmail keeps enough of an address to correlate log lines.
func maskEmail(email string) string {
	return email[:min(3, len(email))] + "****"
}
