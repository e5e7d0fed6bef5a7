package bus

import "time"

// Event kinds. Subscribers filter by the namespace prefix before the dot.
const (
	StoreChanged       = "store.changed"
	StoreStatusChanged = "store.status_changed"

	RealtimeStatusChanged = "realtime.status_changed"

	CrossTabDataChanged = "crosstab.data_changed"

	SessionLoggedIn  = "session.logged_in"
	SessionLoggedOut = "session.logged_out"
)

// Event is a notification published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
