package session

import "time"

// Record is the persisted session snapshot. Field values are copied from
// the account at login/restore time; they go stale the moment the
// directory record changes, which is why restore always revalidates.
type Record struct {
	AccountID   string
	Email       string
	DisplayName string
	AvatarURL   string
	Role        string
	Active      string
	LastLogin   time.Time

	// IssuedAt is set once at login. RefreshedAt advances every time the
	// record is rewritten during restore.
	IssuedAt    time.Time
	RefreshedAt time.Time
}
