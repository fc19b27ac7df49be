package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

var DB *sql.DB

const gamesSchema = `
CREATE TABLE IF NOT EXISTS games (
    room_id     TEXT PRIMARY KEY,
    state       TEXT NOT NULL,
    audit_log   JSONB NOT NULL DEFAULT '[]',
    rankings    JSONB,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func InitPostgres(dsn string) error {
	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	if err := DB.Ping(); err != nil {
		return err
	}
	_, err = DB.Exec(gamesSchema)
	return err
}
