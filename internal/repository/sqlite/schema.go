package sqlite

// Schema contains all SQL statements for creating tables and indexes.
// Ids are ObjectID hex strings so both backends share one id format.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Exercises are owned by their routine and always rewritten as a whole.
CREATE TABLE IF NOT EXISTS routines (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    exercises_json TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- At most one assignment per (owner, day).
CREATE TABLE IF NOT EXISTS scheduled_assignments (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    routine_id TEXT NOT NULL,
    day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
    created_at INTEGER NOT NULL,
    UNIQUE (owner_id, day_of_week)
);

CREATE INDEX IF NOT EXISTS idx_routines_owner ON routines(owner_id, created_at);
CREATE INDEX IF NOT EXISTS idx_assignments_routine ON scheduled_assignments(routine_id);
`
