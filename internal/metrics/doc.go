// Package metrics provides build observability for webbuild.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	b := sitetree.New(opts) // records nothing
//	b := sitetree.New(sitetree.Options{Recorder: metrics.NewPrometheusRecorder(reg)})
//
// The Prometheus implementation can be scraped through HTTPHandler (preview
// server) or dumped once with WriteTextfile for node_exporter's textfile
// collector (one-shot builds).
package metrics
