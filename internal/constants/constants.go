package constants

import "time"

const (
	MapCacheTTL         = 5 * time.Minute
	PlayerCacheTTL      = 5 * time.Minute
	RunCacheTTL         = 2 * time.Minute
	LeaderboardCacheTTL = 2 * time.Minute
	DedupTokenTTL       = 10 * time.Minute
)

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// Reads are retried on SQLITE_BUSY; writes are never auto-retried.
	ReadRetryMax      = 3
	ReadRetryBaseWait = 50 * time.Millisecond
)

const (
	// Checkpoint batches are fetched concurrently when assembling
	// composite run responses.
	CheckpointFetchParallelism = 4
)
