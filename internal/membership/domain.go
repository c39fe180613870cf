// internal/membership/domain.go
package membership

import "libralend/internal/notify"

// User is a registered library user. Identity is the 12-digit ID.
type User struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Channel string `json:"channel,omitempty" db:"channel"`

	// Notifier is where review notifications for this user go.
	Notifier notify.Sink `json:"-" db:"-"`
}
