// Package exitcode parses success-exit-code policies such as "0", "== 2" or
// ">= 0" and evaluates them against process exit codes.
package exitcode

import (
	"fmt"
	"regexp"
	"strconv"
)

// Operator is a comparison operator of a Comparator.
type Operator string

// Supported operators. "=" and "==" are equivalent.
const (
	OpAssign       Operator = "="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
)

var validOperators = map[Operator]bool{
	OpAssign:       true,
	OpEqual:        true,
	OpNotEqual:     true,
	OpLess:         true,
	OpGreater:      true,
	OpLessEqual:    true,
	OpGreaterEqual: true,
}

var policyPattern = regexp.MustCompile(`^\s*([=<>!]*)\s*([0-9]+)\s*$`)

// Comparator is a parsed exit code policy.
type Comparator struct {
	op    Operator
	value int
}

// Parse parses a policy string. It returns false when s is blank or does not
// match "(operator)?(digits)"; callers treat that as "no policy".
// An operator outside the supported set falls back to "==".
func Parse(s string) (Comparator, bool) {
	m := policyPattern.FindStringSubmatch(s)
	if m == nil {
		return Comparator{}, false
	}

	value, err := strconv.Atoi(m[2])
	if err != nil {
		return Comparator{}, false
	}

	op := Operator(m[1])
	if !validOperators[op] {
		op = OpEqual
	}

	return Comparator{op: op, value: value}, true
}

// Operator returns the comparison operator.
func (c Comparator) Operator() Operator {
	return c.op
}

// Value returns the right-hand operand.
func (c Comparator) Value() int {
	return c.value
}

// Evaluate reports whether exitCode satisfies the policy.
func (c Comparator) Evaluate(exitCode int) bool {
	switch c.op {
	case OpAssign, OpEqual:
		return exitCode == c.value
	case OpNotEqual:
		return exitCode != c.value
	case OpLess:
		return exitCode < c.value
	case OpGreater:
		return exitCode > c.value
	case OpLessEqual:
		return exitCode <= c.value
	case OpGreaterEqual:
		return exitCode >= c.value
	default:
		return false
	}
}

// String renders the policy, e.g. "!= 0".
func (c Comparator) String() string {
	return fmt.Sprintf("%s %d", c.op, c.value)
}
