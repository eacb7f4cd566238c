package monitoring

import (
	"github.com/rs/zerolog/log"
)

// Alert raises an operator alert. Alerts are delivered as error logs that
// the log pipeline routes to on-call.
func Alert(message string, labels map[string]string) {
	fields := make(map[string]any, len(labels))
	for k, v := range labels {
		fields[k] = v
	}
	log.Error().
		Str("alert", message).
		Fields(fields).
		Msg("ALERT: Rental service issue detected")
}

// AlertLockout reports an identifier locked out of login.
func AlertLockout(identifier string) {
	LoginLockouts.Inc()
	Alert("login lockout", map[string]string{"identifier": identifier})
}
