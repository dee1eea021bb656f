package condition

// Logic joins the children of an expression group.
type Logic string

const (
	// LogicAnd requires every child expression to evaluate true.
	LogicAnd Logic = "and"
	// LogicOr requires at least one child expression to evaluate true.
	LogicOr Logic = "or"
)

// Operator identifies a leaf comparison. Unrecognized operators arriving
// from stored flow definitions evaluate to false rather than failing.
type Operator string

const (
	// OpEquals matches on strict value equality.
	OpEquals Operator = "equals"
	// OpNotEquals is the negation of OpEquals.
	OpNotEquals Operator = "notEquals"
	// OpContains matches substrings for strings and element membership for lists.
	OpContains Operator = "contains"
	// OpNotContains is the negation of OpContains.
	OpNotContains Operator = "notContains"
	// OpStartsWith matches string prefixes.
	OpStartsWith Operator = "startsWith"
	// OpEndsWith matches string suffixes.
	OpEndsWith Operator = "endsWith"
	// OpGreaterThan compares numerically.
	OpGreaterThan Operator = "greaterThan"
	// OpLessThan compares numerically.
	OpLessThan Operator = "lessThan"
	// OpGreaterOrEqual compares numerically.
	OpGreaterOrEqual Operator = "greaterOrEqual"
	// OpLessOrEqual compares numerically.
	OpLessOrEqual Operator = "lessOrEqual"
	// OpIn tests membership of the actual value in an expected list.
	OpIn Operator = "in"
	// OpNotIn is the negation of OpIn.
	OpNotIn Operator = "notIn"
	// OpExists tests that the key resolves to a non-nil value.
	OpExists Operator = "exists"
	// OpNotExists is the negation of OpExists.
	OpNotExists Operator = "notExists"
	// OpMatches tests the actual string against a hardened regular expression.
	OpMatches Operator = "matches"
	// OpIsTrue requires the boolean value true.
	OpIsTrue Operator = "isTrue"
	// OpIsFalse requires the boolean value false.
	OpIsFalse Operator = "isFalse"
)

// Expression is a node of a boolean expression tree. A group carries Logic
// plus Conditions; a leaf carries Key, Operator, and Value. The zero value
// is an empty group and evaluates true.
type Expression struct {
	Logic      Logic        `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions []Expression `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	Key      string   `json:"key,omitempty" yaml:"key,omitempty"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// IsGroup reports whether the expression is a group rather than a leaf.
// Leaves are recognized by an operator; everything else is treated as a
// group so that malformed stored data degrades to the empty-group result.
func (e *Expression) IsGroup() bool {
	return e.Operator == ""
}

// Group builds an expression group from child expressions.
func Group(logic Logic, children ...Expression) Expression {
	return Expression{Logic: logic, Conditions: children}
}

// Leaf builds a single comparison expression.
func Leaf(key string, op Operator, value any) Expression {
	return Expression{Key: key, Operator: op, Value: value}
}
