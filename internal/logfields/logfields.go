package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTenant     = "tenant"
	KeySite       = "site"
	KeyPage       = "page"
	KeySection    = "section"
	KeySession    = "session_id"
	KeyOp         = "op"
	KeyLayout     = "layout"
	KeyCollection = "collection"
	KeyIndex      = "index"
	KeyRevision   = "revision_id"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Tenant(id string) slog.Attr       { return slog.String(KeyTenant, id) }
func Site(id string) slog.Attr         { return slog.String(KeySite, id) }
func Page(id string) slog.Attr         { return slog.String(KeyPage, id) }
func Section(key string) slog.Attr     { return slog.String(KeySection, key) }
func Session(id string) slog.Attr      { return slog.String(KeySession, id) }
func Op(name string) slog.Attr         { return slog.String(KeyOp, name) }
func Layout(name string) slog.Attr     { return slog.String(KeyLayout, name) }
func Collection(name string) slog.Attr { return slog.String(KeyCollection, name) }
func Index(i int) slog.Attr            { return slog.Int(KeyIndex, i) }
func Revision(id string) slog.Attr     { return slog.String(KeyRevision, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
