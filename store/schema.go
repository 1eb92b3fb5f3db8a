// store/schema.go
package store

import (
	"context"
	"fmt"
	"strings"
)

type columnTypes struct {
	id, ts, notifIndex string
}

var dialectTypes = map[Dialect]columnTypes{
	SQLite:   {id: "INTEGER PRIMARY KEY AUTOINCREMENT", ts: "TIMESTAMP"},
	MySQL:    {id: "BIGINT AUTO_INCREMENT PRIMARY KEY", ts: "DATETIME(6)", notifIndex: ",\n\tINDEX idx_notifications_user (user_id, user_role)"},
	Postgres: {id: "BIGSERIAL PRIMARY KEY", ts: "TIMESTAMP"},
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS students (
	id {{id}},
	name VARCHAR(100) NOT NULL,
	register_number VARCHAR(50) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL,
	department VARCHAR(100) NOT NULL,
	semester VARCHAR(20) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	created_at {{ts}} NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS faculty (
	id {{id}},
	name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL UNIQUE,
	department VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at {{ts}} NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS events (
	id {{id}},
	event_name VARCHAR(255) NOT NULL,
	event_date VARCHAR(10) NOT NULL,
	location VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	coordinator_id BIGINT NOT NULL REFERENCES faculty(id),
	status VARCHAR(10) NOT NULL DEFAULT 'Open',
	created_at {{ts}} NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS registrations (
	id {{id}},
	student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	token VARCHAR(36) NOT NULL UNIQUE,
	attendance VARCHAR(10) NOT NULL DEFAULT '',
	certificate_status VARCHAR(20) NOT NULL DEFAULT '',
	created_at {{ts}} NOT NULL,
	UNIQUE (student_id, event_id)
)`, `
CREATE TABLE IF NOT EXISTS notifications (
	id {{id}},
	user_id BIGINT NOT NULL,
	user_role VARCHAR(10) NOT NULL,
	message TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at {{ts}} NOT NULL{{notif_index}}
)`,
}

// EnsureSchema creates any missing tables. It is safe to run on every
// start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	types, ok := dialectTypes[s.dialect]
	if !ok {
		return fmt.Errorf("store: no schema for dialect %q", s.dialect)
	}
	r := strings.NewReplacer("{{id}}", types.id, "{{ts}}", types.ts, "{{notif_index}}", types.notifIndex)

	stmts := make([]string, 0, len(schema)+1)
	for _, ddl := range schema {
		stmts = append(stmts, r.Replace(ddl))
	}
	if s.dialect != MySQL {
		stmts = append(stmts, "CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, user_role)")
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
