// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/eventdesk/mailer"
	"github.com/dalemusser/eventdesk/store"
)

// DBDeps holds the backends opened at startup.
type DBDeps struct {
	Store *store.Store
	Mail  *mailer.Queue
}
