package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// ErrUnsupportedCondition is returned for conditions that cannot be expressed in SQL.
var ErrUnsupportedCondition = errors.New("postgres: unsupported condition")

var columns = map[orm.Field]string{
	orm.FieldSID:          "sid",
	orm.FieldExpires:      "expires",
	orm.FieldHasExpires:   "has_expires",
	orm.FieldLastModified: "last_modified",
}

// whereClause renders cond as SQL, appending positional arguments to args.
func whereClause(cond orm.Condition, args *[]any) (string, error) {
	switch c := cond.(type) {
	case nil:
		return "TRUE", nil
	case orm.Compare:
		col, ok := columns[c.Field]
		if !ok {
			return "", fmt.Errorf("%w: field %q", ErrUnsupportedCondition, c.Field)
		}
		switch c.Op {
		case orm.OpEq, orm.OpGt, orm.OpLt:
		default:
			return "", fmt.Errorf("%w: operator %q", ErrUnsupportedCondition, c.Op)
		}
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s %s $%d", col, c.Op, len(*args)), nil
	case orm.Group:
		if len(c.Conditions) == 0 {
			if c.Any {
				return "FALSE", nil
			}
			return "TRUE", nil
		}
		parts := make([]string, 0, len(c.Conditions))
		for _, sub := range c.Conditions {
			s, err := whereClause(sub, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		sep := " AND "
		if c.Any {
			sep = " OR "
		}
		return "(" + strings.Join(parts, sep) + ")", nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedCondition, cond)
}

// setClause renders the assignments for patch. has_expires follows expires.
func setClause(p orm.Patch) (string, []any) {
	var (
		parts []string
		args  []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		parts = append(parts, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Session != nil {
		add("session", p.Session)
	}
	if p.Expires != nil {
		add("expires", p.Expires)
		add("has_expires", true)
	}
	if p.LastModified != nil {
		add("last_modified", p.LastModified)
	}
	return strings.Join(parts, ", "), args
}
