// Package logfields keeps slog attribute keys consistent across packages.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTemplate   = "template"
	KeyLayout     = "layout"
	KeyRenderID   = "render_id"
	KeyDurationMS = "duration_ms"
	KeyDepth      = "layout_depth"
	KeyAutoescape = "autoescape"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyError      = "error"
	KeyErrorKind  = "error_kind"
)

func Template(path string) slog.Attr   { return slog.String(KeyTemplate, path) }
func Layout(path string) slog.Attr     { return slog.String(KeyLayout, path) }
func RenderID(id string) slog.Attr     { return slog.String(KeyRenderID, id) }
func Depth(n int) slog.Attr            { return slog.Int(KeyDepth, n) }
func Autoescape(on bool) slog.Attr     { return slog.Bool(KeyAutoescape, on) }
func Method(name string) slog.Attr     { return slog.String(KeyMethod, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func ErrorKind(kind string) slog.Attr  { return slog.String(KeyErrorKind, kind) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
