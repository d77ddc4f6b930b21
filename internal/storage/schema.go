package storage

const schema = `
-- Failure streaks table (circuit breaker state)
CREATE TABLE IF NOT EXISTS failure_streaks (
    task_key TEXT PRIMARY KEY,
    consecutive_failures INTEGER NOT NULL DEFAULT 0 CHECK(consecutive_failures >= 0),
    last_updated DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Gate run history (trend snapshots)
CREATE TABLE IF NOT EXISTS gate_runs (
    run_id TEXT PRIMARY KEY,
    task_key TEXT NOT NULL,
    status TEXT NOT NULL,
    check_count INTEGER NOT NULL DEFAULT 0,
    blocking_count INTEGER NOT NULL DEFAULT 0,
    warning_count INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_gate_runs_task_key ON gate_runs(task_key);
CREATE INDEX IF NOT EXISTS idx_gate_runs_created_at ON gate_runs(created_at);

-- Gate activity feed
CREATE TABLE IF NOT EXISTS gate_events (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    timestamp DATETIME NOT NULL,
    run_id TEXT,
    task_key TEXT NOT NULL,
    severity TEXT NOT NULL,
    message TEXT NOT NULL,
    data TEXT
);

CREATE INDEX IF NOT EXISTS idx_gate_events_task_key ON gate_events(task_key);
CREATE INDEX IF NOT EXISTS idx_gate_events_run_id ON gate_events(run_id);
CREATE INDEX IF NOT EXISTS idx_gate_events_timestamp ON gate_events(timestamp);
`
