package mongo

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// ErrUnsupportedCondition is returned for conditions without a BSON form.
var ErrUnsupportedCondition = errors.New("mongo: unsupported condition")

var operators = map[orm.Op]string{
	orm.OpGt: "$gt",
	orm.OpLt: "$lt",
}

// Filter translates cond into a BSON query document.
func Filter(cond orm.Condition) (bson.D, error) {
	switch c := cond.(type) {
	case nil:
		return bson.D{}, nil
	case orm.Compare:
		switch c.Field {
		case orm.FieldSID, orm.FieldExpires, orm.FieldHasExpires, orm.FieldLastModified:
		default:
			return nil, fmt.Errorf("%w: field %q", ErrUnsupportedCondition, c.Field)
		}
		if c.Op == orm.OpEq {
			return bson.D{{Key: string(c.Field), Value: c.Value}}, nil
		}
		op, ok := operators[c.Op]
		if !ok {
			return nil, fmt.Errorf("%w: operator %q", ErrUnsupportedCondition, c.Op)
		}
		return bson.D{{Key: string(c.Field), Value: bson.D{{Key: op, Value: c.Value}}}}, nil
	case orm.Group:
		if len(c.Conditions) == 0 {
			if c.Any {
				// $nor of an always-true filter matches nothing.
				return bson.D{{Key: "$nor", Value: bson.A{bson.D{}}}}, nil
			}
			return bson.D{}, nil
		}
		subs := make(bson.A, 0, len(c.Conditions))
		for _, sub := range c.Conditions {
			f, err := Filter(sub)
			if err != nil {
				return nil, err
			}
			subs = append(subs, f)
		}
		key := "$and"
		if c.Any {
			key = "$or"
		}
		return bson.D{{Key: key, Value: subs}}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedCondition, cond)
}

// Set renders the $set document for patch. has_expires follows expires.
func Set(p orm.Patch) bson.D {
	var set bson.D
	if p.Session != nil {
		set = append(set, bson.E{Key: string(orm.FieldSession), Value: p.Session})
	}
	if p.Expires != nil {
		set = append(set,
			bson.E{Key: string(orm.FieldExpires), Value: *p.Expires},
			bson.E{Key: string(orm.FieldHasExpires), Value: true},
		)
	}
	if p.LastModified != nil {
		set = append(set, bson.E{Key: string(orm.FieldLastModified), Value: *p.LastModified})
	}
	return set
}

func decodePayload(rv bson.RawValue) (any, error) {
	switch rv.Type {
	case 0, bson.TypeNull, bson.TypeUndefined:
		return nil, nil
	case bson.TypeString:
		return rv.StringValue(), nil
	case bson.TypeEmbeddedDocument:
		var m bson.M
		if err := rv.Unmarshal(&m); err != nil {
			return nil, err
		}
		return normalize(m), nil
	}
	return nil, fmt.Errorf("mongo: unexpected session payload type %s", rv.Type)
}

// normalize converts driver containers into plain maps and slices so
// payloads look the same regardless of backend.
func normalize(v any) any {
	switch x := v.(type) {
	case bson.M:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	}
	return v
}
