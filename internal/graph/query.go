package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hustlex/admin-gateway/internal/domain"
)

var ErrInvalidFilter = errors.New("invalid_filter")

type FilterOp string

const (
	OpEq    FilterOp = "eq"
	OpNeq   FilterOp = "neq"
	OpLt    FilterOp = "lt"
	OpLte   FilterOp = "lte"
	OpGt    FilterOp = "gt"
	OpGte   FilterOp = "gte"
	OpIn    FilterOp = "in"
	OpILike FilterOp = "ilike"
)

var hasuraOps = map[FilterOp]string{
	OpEq:    "_eq",
	OpNeq:   "_neq",
	OpLt:    "_lt",
	OpLte:   "_lte",
	OpGt:    "_gt",
	OpGte:   "_gte",
	OpIn:    "_in",
	OpILike: "_ilike",
}

// ParseFilterOp accepts an operator name; empty means eq.
func ParseFilterOp(s string) (FilterOp, error) {
	if s == "" {
		return OpEq, nil
	}
	op := FilterOp(strings.ToLower(s))
	if _, ok := hasuraOps[op]; !ok {
		return "", fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, s)
	}
	return op, nil
}

// SortField orders by a column; dotted names sort by a related column.
type SortField struct {
	Field string
	Desc  bool
}

// Filter restricts a list. For OpIn the Value should be a slice; a scalar is
// treated as a one-element list.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

type ListParams struct {
	Limit   int
	Offset  int
	Sort    []SortField
	Filters []Filter
}

func listQuery(r domain.Resource) string {
	return fmt.Sprintf(`query List($where: %[1]s_bool_exp, $order_by: [%[1]s_order_by!], $limit: Int, $offset: Int) {
  %[1]s(where: $where, order_by: $order_by, limit: $limit, offset: $offset) { %[2]s }
  %[1]s_aggregate(where: $where) { aggregate { count } }
}`, r.Name, r.Selection)
}

func getQuery(r domain.Resource) string {
	return fmt.Sprintf(`query Get($id: %[1]s!) {
  %[2]s_by_pk(id: $id) { %[3]s }
}`, r.IDType, r.Name, r.Selection)
}

func createQuery(r domain.Resource) string {
	return fmt.Sprintf(`mutation Create($object: %[1]s_insert_input!) {
  insert_%[1]s_one(object: $object) { %[2]s }
}`, r.Name, r.Selection)
}

func updateQuery(r domain.Resource) string {
	return fmt.Sprintf(`mutation Update($id: %[1]s!, $set: %[2]s_set_input) {
  update_%[2]s_by_pk(pk_columns: {id: $id}, _set: $set) { %[3]s }
}`, r.IDType, r.Name, r.Selection)
}

func deleteQuery(r domain.Resource) string {
	return fmt.Sprintf(`mutation Delete($id: %[1]s!) {
  delete_%[2]s_by_pk(id: $id) { id }
}`, r.IDType, r.Name)
}

// listVariables builds the Hasura variables for a list. Unset paging and
// ordering are left out so the graph service applies its defaults.
func listVariables(p ListParams) (map[string]any, error) {
	where, err := buildWhere(p.Filters)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{"where": where}
	if p.Limit > 0 {
		vars["limit"] = p.Limit
	}
	if p.Offset > 0 {
		vars["offset"] = p.Offset
	}
	if len(p.Sort) > 0 {
		vars["order_by"] = buildOrderBy(p.Sort)
	}
	return vars, nil
}

func buildWhere(filters []Filter) (map[string]any, error) {
	clauses := make([]any, 0, len(filters))
	for _, f := range filters {
		if f.Field == "" {
			return nil, fmt.Errorf("%w: empty field", ErrInvalidFilter)
		}
		op := f.Op
		if op == "" {
			op = OpEq
		}
		hop, ok := hasuraOps[op]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, op)
		}
		value := f.Value
		if op == OpIn {
			value = asList(value)
		}
		clauses = append(clauses, nest(f.Field, map[string]any{hop: value}))
	}

	switch len(clauses) {
	case 0:
		return map[string]any{}, nil
	case 1:
		return clauses[0].(map[string]any), nil
	default:
		return map[string]any{"_and": clauses}, nil
	}
}

func buildOrderBy(sort []SortField) []map[string]any {
	out := make([]map[string]any, 0, len(sort))
	for _, s := range sort {
		dir := "asc"
		if s.Desc {
			dir = "desc"
		}
		out = append(out, nest(s.Field, dir))
	}
	return out
}

// nest turns "a.b.c" and a leaf into {"a":{"b":{"c":leaf}}}.
func nest(path string, leaf any) map[string]any {
	parts := strings.Split(path, ".")
	var node any = leaf
	for i := len(parts) - 1; i >= 0; i-- {
		node = map[string]any{parts[i]: node}
	}
	return node.(map[string]any)
}

func asList(v any) any {
	switch x := v.(type) {
	case []any, []string, []int, []float64:
		return x
	case nil:
		return []any{}
	default:
		return []any{x}
	}
}
