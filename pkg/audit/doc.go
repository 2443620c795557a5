// Package audit persists evaluation results for later review.
//
// Store is a SQLite-backed append-only record of every evaluation: the
// verdict, status, and the full condition/action outcome trail as JSON.
// Pruner enforces the retention policy (age and record-count caps) and
// Scheduler runs it on a cron schedule.
package audit
