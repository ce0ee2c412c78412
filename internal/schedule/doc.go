// Package schedule parses the daily trigger and the wall-clock window
// boundaries used by the poller, and runs the trigger in serve mode.
//
// Trigger strings are either a cron expression (robfig/cron) or a fixed
// interval. Window boundaries are clock times ("21:31:30") resolved against a
// reference day in the configured timezone.
package schedule
