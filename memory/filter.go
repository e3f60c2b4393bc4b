package memory

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

var operators = map[Operator]bool{
	OpEq: true, OpNe: true,
	OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpIn: true,
}

// Clause is one (field, operator, value) predicate over record metadata.
type Clause struct {
	Field string   `json:"field"`
	Op    Operator `json:"operator"`
	Value Value    `json:"value"`
}

// Filter is an ordered list of clauses combined with logical AND.
type Filter []Clause

// ParseFilter decodes the external filter representation, a JSON array of
// {field, operator, value} objects, and validates it.
func ParseFilter(data []byte) (Filter, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var f Filter
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "malformed filter", goerr.T(TagValidation))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate rejects clauses with empty fields, unknown operators, or operator
// and value shapes that can never match (an "in" clause needs a list value;
// ordering operators need a numeric value).
func (f Filter) Validate() error {
	for _, c := range f {
		if c.Field == "" {
			return goerr.New("filter clause field is required", goerr.T(TagValidation))
		}
		if !operators[c.Op] {
			return goerr.New("unsupported filter operator",
				goerr.T(TagValidation), goerr.V("operator", string(c.Op)))
		}
		switch c.Op {
		case OpIn:
			if c.Value.Kind() != KindList {
				return goerr.New("'in' filter requires a list value",
					goerr.T(TagValidation), goerr.V("field", c.Field))
			}
		case OpGt, OpGte, OpLt, OpLte:
			if c.Value.Kind() != KindNumber {
				return goerr.New("ordering filter requires a numeric value",
					goerr.T(TagValidation),
					goerr.V("field", c.Field), goerr.V("operator", string(c.Op)))
			}
		}
	}
	return nil
}

// Matches evaluates all clauses against md. A clause on a missing field
// excludes the record, as does a type mismatch between the stored value and
// the operator; neither is an error.
func (f Filter) Matches(md Metadata) bool {
	for _, c := range f {
		v, ok := md[c.Field]
		if !ok {
			return false
		}
		if !c.matches(v) {
			return false
		}
	}
	return true
}

func (c Clause) matches(v Value) bool {
	switch c.Op {
	case OpEq:
		return v.Equal(c.Value)
	case OpNe:
		return !v.Equal(c.Value)
	case OpGt, OpGte, OpLt, OpLte:
		n, ok := v.AsNumber()
		if !ok {
			return false
		}
		want, ok := c.Value.AsNumber()
		if !ok {
			return false
		}
		switch c.Op {
		case OpGt:
			return n > want
		case OpGte:
			return n >= want
		case OpLt:
			return n < want
		default:
			return n <= want
		}
	case OpIn:
		set, ok := c.Value.AsList()
		if !ok {
			return false
		}
		for _, member := range set {
			if v.Equal(member) {
				return true
			}
		}
		return false
	}
	return false
}
