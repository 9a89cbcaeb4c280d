package docstore

import (
	"fmt"
	"regexp"
	"slices"
)

// Op is a filter comparison.
type Op string

const (
	Equal        Op = "=="
	Less         Op = "<"
	LessEqual    Op = "<="
	Greater      Op = ">"
	GreaterEqual Op = ">="
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var fieldRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Filter restricts a query to documents whose field compares true against Value.
type Filter struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// Order sorts a query by one field.
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Query selects documents of one collection. Build it with Collection and
// the chained methods; each returns a copy.
type Query struct {
	Collection string   `json:"collection"`
	Filters    []Filter `json:"filters,omitempty"`
	Orders     []Order  `json:"orders,omitempty"`
	Max        int      `json:"limit,omitempty"`
}

// Collection starts a query over the named collection.
func Collection(name string) Query {
	return Query{Collection: name}
}

// Where adds a filter.
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(slices.Clip(q.Filters), Filter{Field: field, Op: op, Value: value})
	return q
}

// OrderBy adds a sort key.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.Orders = append(slices.Clip(q.Orders), Order{Field: field, Direction: dir})
	return q
}

// Limit caps the number of returned documents. Zero means no limit.
func (q Query) Limit(n int) Query {
	q.Max = n
	return q
}

// Validate reports whether the query can be executed.
func (q Query) Validate() error {
	if err := ValidateCollection(q.Collection); err != nil {
		return err
	}
	for _, f := range q.Filters {
		if !fieldRegexp.MatchString(f.Field) {
			return fmt.Errorf("%w: field %q", ErrInvalidArgument, f.Field)
		}
		switch f.Op {
		case Equal, Less, LessEqual, Greater, GreaterEqual:
		default:
			return fmt.Errorf("%w: operator %q", ErrInvalidArgument, f.Op)
		}
		switch f.Value.(type) {
		case string, bool, float64, float32, int, int32, int64:
		default:
			return fmt.Errorf("%w: value of type %T for field %q", ErrInvalidArgument, f.Value, f.Field)
		}
	}
	for _, o := range q.Orders {
		if !fieldRegexp.MatchString(o.Field) {
			return fmt.Errorf("%w: order field %q", ErrInvalidArgument, o.Field)
		}
		if o.Direction != Asc && o.Direction != Desc {
			return fmt.Errorf("%w: direction %q", ErrInvalidArgument, o.Direction)
		}
	}
	if q.Max < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidArgument)
	}
	return nil
}

var idRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateRef checks a collection name and document id.
func ValidateRef(collection, id string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if !idRegexp.MatchString(id) {
		return fmt.Errorf("%w: document id %q", ErrInvalidArgument, id)
	}
	return nil
}

// ValidateCollection checks a collection name.
func ValidateCollection(name string) error {
	if !fieldRegexp.MatchString(name) {
		return fmt.Errorf("%w: collection %q", ErrInvalidArgument, name)
	}
	return nil
}
