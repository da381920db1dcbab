// Package telemetry exports engine events as Prometheus metrics and
// OpenTelemetry spans.
//
// Both Metrics and Tracer implement todoui.Observer and can be combined:
//
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	tr := telemetry.NewTracer()
//	cfg.Observer = todoui.Observers{m, tr}
//
// Metrics collected (namespace "todoui" by default):
//   - notifications_shown_total: notifications by kind and source
//   - notifications_removed_total: removals by kind
//   - notifications_active: notifications currently in pages
//   - notification_visible_seconds: time from show to removal
//   - submissions_blocked_total: submits suppressed by validation
//   - validation_errors_total: failing fields across blocked submits
//   - busy_entered_total / busy_restored_total: busy-state transitions
//   - toggles_deferred_total: deferred toggle submissions
//   - confirmations_total: confirmation answers by result
//   - native_submissions_total: gate-driven submissions by gate and status
//   - live_sessions: open live-page sessions
//   - websocket_errors_total: live-page socket errors by type
package telemetry
