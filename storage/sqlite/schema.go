package sqlite

// pragmas are applied once after opening. Per-connection settings such as the
// busy timeout and foreign keys travel in the DSN instead.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

const schema = `
CREATE TABLE IF NOT EXISTS spaces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	address TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	middle_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reservations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	space_id INTEGER NOT NULL REFERENCES spaces (id) ON DELETE CASCADE
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_space_date ON reservations (space_id, date);
CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations (date);

CREATE TABLE IF NOT EXISTS reservation_users (
	reservation_id INTEGER NOT NULL REFERENCES reservations (id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	PRIMARY KEY (reservation_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_reservation_users_user ON reservation_users (user_id);
`
