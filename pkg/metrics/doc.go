// Package metrics exposes render observability hooks.
//
// Engines receive a Recorder through engine.WithMetrics. The default is
// NoopRecorder, so nothing is collected unless a real recorder is injected:
//
//	reg := prometheus.NewRegistry()
//	eng, err := engine.New(
//	    engine.WithDir("./templates"),
//	    engine.WithMetrics(metrics.NewPrometheusRecorder(reg)),
//	)
package metrics
