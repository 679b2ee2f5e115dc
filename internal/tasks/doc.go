// Package tasks implements long-running library operations with real-time progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] exports many playlists concurrently:
//   - Resolves the target playlist set (explicit IDs or the whole library)
//   - Fetches each playlist's metadata and full track list
//   - Writes one export per playlist (CSV or JSON) through a bounded worker pool
//   - Generates a manifest file summarizing the run
//
// API calls are paced by a shared [rate.Limiter] so a large library does
// not trip the remote catalog's rate limits. Partial failures are
// collected per playlist instead of aborting the run.
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values through a caller-provided
// channel. Sends use select with default so a slow consumer never
// blocks the export.
package tasks
