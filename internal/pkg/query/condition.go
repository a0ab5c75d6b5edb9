package query

import "fmt"

// Binder hands out positional parameter names while a statement is rendered.
type Binder struct {
	params map[string]interface{}
	next   int
}

func newBinder() *Binder {
	return &Binder{params: map[string]interface{}{}}
}

// Bind records v and returns the placeholder that refers to it.
func (b *Binder) Bind(v interface{}) string {
	name := fmt.Sprintf("p%d", b.next)
	b.next++
	b.params[name] = v
	return "@" + name
}

// Condition is one WHERE predicate.
type Condition interface {
	SQL(b *Binder) string
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(b *Binder) string

func (f ConditionFunc) SQL(b *Binder) string { return f(b) }

func compare(column, op string, v interface{}) Condition {
	return ConditionFunc(func(b *Binder) string {
		return column + " " + op + " " + b.Bind(v)
	})
}

// Eq matches column = v.
func Eq(column string, v interface{}) Condition { return compare(column, "=", v) }

// Gt matches column > v. Keyset pagination resumes with it.
func Gt(column string, v interface{}) Condition { return compare(column, ">", v) }

// In matches rows whose column is one of values, as "column IN UNNEST(@pN)".
func In(column string, values []string) Condition {
	return ConditionFunc(func(b *Binder) string {
		return column + " IN UNNEST(" + b.Bind(values) + ")"
	})
}

// Expr wraps a fixed predicate in parentheses. It binds nothing, so it must
// never carry caller input.
func Expr(predicate string) Condition {
	return ConditionFunc(func(*Binder) string {
		return "(" + predicate + ")"
	})
}
