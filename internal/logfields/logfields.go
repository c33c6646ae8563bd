package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyFolder     = "folder"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyEntry      = "entry"
	KeyKind       = "kind"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyProvider   = "provider"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Folder(f string) slog.Attr       { return slog.String(KeyFolder, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Entry(name string) slog.Attr     { return slog.String(KeyEntry, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Provider(name string) slog.Attr  { return slog.String(KeyProvider, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
