package orm

import "time"

// Field names a persisted session attribute.
// The string value is the column (or document key) used by adapters.
type Field string

const (
	FieldSID          Field = "sid"
	FieldSession      Field = "session"
	FieldExpires      Field = "expires"
	FieldHasExpires   Field = "has_expires"
	FieldLastModified Field = "last_modified"
)

// Record is the persisted unit of a session collection.
type Record struct {
	// Session holds the encoded payload: a string for PayloadText models,
	// a map[string]any for PayloadJSON models.
	Session      any        `json:"session" bson:"session"`
	Expires      *time.Time `json:"expires,omitempty" bson:"expires,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty" bson:"last_modified,omitempty"`
	SID          string     `json:"sid" bson:"sid"`
	HasExpires   bool       `json:"has_expires" bson:"has_expires"`
}

// Patch describes a partial update. Nil fields are left unchanged.
type Patch struct {
	Session      any
	Expires      *time.Time
	LastModified *time.Time
}

// Apply writes the patch onto rec and recomputes derived fields.
func (p Patch) Apply(rec *Record) {
	if p.Session != nil {
		rec.Session = p.Session
	}
	if p.Expires != nil {
		rec.Expires = p.Expires
	}
	if p.LastModified != nil {
		rec.LastModified = p.LastModified
	}
	rec.HasExpires = rec.Expires != nil
}

// Clone returns a copy of rec that shares no memory with it.
func (r Record) Clone() Record {
	out := r
	if r.Expires != nil {
		t := *r.Expires
		out.Expires = &t
	}
	if r.LastModified != nil {
		t := *r.LastModified
		out.LastModified = &t
	}
	out.Session = CopyPayload(r.Session)
	return out
}

// CopyPayload deep-copies the maps and slices of a structured payload.
// Other values are returned as is.
func CopyPayload(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = CopyPayload(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = CopyPayload(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, e := range x {
			out[i] = CopyPayload(e).(map[string]any)
		}
		return out
	}
	return v
}

// Time returns a pointer to t, truncated to microseconds so values survive
// a round trip through backends with microsecond precision.
func Time(t time.Time) *time.Time {
	t = t.Truncate(time.Microsecond)
	return &t
}
