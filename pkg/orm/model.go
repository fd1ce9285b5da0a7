package orm

// PayloadType selects how the session payload column is stored.
type PayloadType string

const (
	// PayloadText stores the payload as an opaque string.
	PayloadText PayloadType = "text"
	// PayloadJSON stores the payload as a structured document.
	PayloadJSON PayloadType = "json"
)

// Default identifiers of the bundled session model.
const (
	DefaultIdentity   = "sessions"
	DefaultConnection = "sessionstore"
	DefaultTableName  = "sessions"
)

// Model describes a session collection to an adapter.
type Model struct {
	Identity   string
	Connection string
	TableName  string
	Payload    PayloadType
}

// DefaultModel returns the bundled session model with the given table name
// and payload type. Empty values fall back to the defaults.
func DefaultModel(table string, payload PayloadType) Model {
	if table == "" {
		table = DefaultTableName
	}
	if payload == "" {
		payload = PayloadText
	}
	return Model{
		Identity:   DefaultIdentity,
		Connection: DefaultConnection,
		TableName:  table,
		Payload:    payload,
	}
}

// BeforeValidate recomputes derived fields before a record is written.
// Some backends cannot reliably query for a null expires column, so
// HasExpires mirrors its nullability.
func (m Model) BeforeValidate(rec *Record) error {
	if rec.SID == "" {
		return ErrMissingSID
	}
	rec.HasExpires = rec.Expires != nil
	return nil
}
