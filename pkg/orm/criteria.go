package orm

import (
	"fmt"
	"time"
)

// Op is a comparison operator understood by every adapter.
type Op string

const (
	OpEq Op = "="
	OpGt Op = ">"
	OpLt Op = "<"
)

// Condition is a query predicate over session records.
// A nil Condition matches every record.
type Condition interface {
	// Match evaluates the predicate against a record in memory.
	Match(rec Record) bool
	fmt.Stringer
}

// Compare is a single field comparison.
type Compare struct {
	Value any
	Field Field
	Op    Op
}

// Eq matches records whose field equals v.
func Eq(f Field, v any) Compare { return Compare{Field: f, Op: OpEq, Value: v} }

// Gt matches records whose time field is strictly after t.
// Records with a nil value never match.
func Gt(f Field, t time.Time) Compare { return Compare{Field: f, Op: OpGt, Value: t} }

// Lt matches records whose time field is strictly before t.
// Records with a nil value never match.
func Lt(f Field, t time.Time) Compare { return Compare{Field: f, Op: OpLt, Value: t} }

func (c Compare) Match(rec Record) bool {
	switch c.Field {
	case FieldSID:
		s, ok := c.Value.(string)
		return ok && c.Op == OpEq && rec.SID == s
	case FieldHasExpires:
		b, ok := c.Value.(bool)
		return ok && c.Op == OpEq && rec.HasExpires == b
	case FieldExpires:
		return compareTime(rec.Expires, c.Op, c.Value)
	case FieldLastModified:
		return compareTime(rec.LastModified, c.Op, c.Value)
	}
	return false
}

func (c Compare) String() string {
	if t, ok := c.Value.(time.Time); ok {
		return fmt.Sprintf("%s %s %s", c.Field, c.Op, t.Format(time.RFC3339Nano))
	}
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

func compareTime(v *time.Time, op Op, want any) bool {
	t, ok := want.(time.Time)
	if !ok || v == nil {
		return false
	}
	switch op {
	case OpEq:
		return v.Equal(t)
	case OpGt:
		return v.After(t)
	case OpLt:
		return v.Before(t)
	}
	return false
}

// Group combines conditions with a boolean connective.
type Group struct {
	Conditions []Condition
	Any        bool // true = OR, false = AND
}

// Or matches records satisfying at least one condition.
func Or(conds ...Condition) Group { return Group{Conditions: conds, Any: true} }

// And matches records satisfying all conditions.
func And(conds ...Condition) Group { return Group{Conditions: conds} }

func (g Group) Match(rec Record) bool {
	if len(g.Conditions) == 0 {
		return !g.Any
	}
	for _, c := range g.Conditions {
		ok := Matches(c, rec)
		if g.Any && ok {
			return true
		}
		if !g.Any && !ok {
			return false
		}
	}
	return !g.Any
}

func (g Group) String() string {
	sep := " AND "
	if g.Any {
		sep = " OR "
	}
	out := "("
	for i, c := range g.Conditions {
		if i > 0 {
			out += sep
		}
		if c == nil {
			out += "TRUE"
			continue
		}
		out += c.String()
	}
	return out + ")"
}

// Matches reports whether rec satisfies cond. A nil condition matches everything.
func Matches(cond Condition, rec Record) bool {
	if cond == nil {
		return true
	}
	return cond.Match(rec)
}

// SIDOf returns the sid a condition pins with top-level equality, either
// directly or as a member of an AND group. Adapters use it to avoid scans.
func SIDOf(cond Condition) (string, bool) {
	switch c := cond.(type) {
	case Compare:
		if c.Field == FieldSID && c.Op == OpEq {
			s, ok := c.Value.(string)
			return s, ok
		}
	case Group:
		if c.Any {
			return "", false
		}
		for _, sub := range c.Conditions {
			if s, ok := SIDOf(sub); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Live matches the record for sid only while it has not expired at now.
func Live(sid string, now time.Time) Condition {
	return And(
		Eq(FieldSID, sid),
		Or(Eq(FieldHasExpires, false), Gt(FieldExpires, now)),
	)
}
