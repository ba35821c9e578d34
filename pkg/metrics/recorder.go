package metrics

import "time"

// ResultLabel enumerates render outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for template rendering.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// ObserveRenderDuration records one complete render, layouts included.
	ObserveRenderDuration(d time.Duration, result ResultLabel)
	// IncRenderError counts a failed render by error kind.
	IncRenderError(kind string)
	// ObserveLayoutDepth records how many layouts wrapped a render.
	ObserveLayoutDepth(depth int)
	// IncTemplateCache counts parsed-template cache lookups.
	IncTemplateCache(hit bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(time.Duration, ResultLabel) {}
func (NoopRecorder) IncRenderError(string)                            {}
func (NoopRecorder) ObserveLayoutDepth(int)                           {}
func (NoopRecorder) IncTemplateCache(bool)                            {}
