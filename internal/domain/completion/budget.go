package completion

import "strings"

// Family groups models that share a token budget.
type Family string

// Model families.
const (
	Standard  Family = "standard"
	Reasoning Family = "reasoning"
)

// Budget is the token allowance for a single completion call.
type Budget struct {
	family    Family
	maxTokens int
}

// Family returns the model family the budget was resolved for.
func (b Budget) Family() Family { return b.family }

// MaxTokens returns the completion token cap.
func (b Budget) MaxTokens() int { return b.maxTokens }

// IsReasoning reports whether the budget targets a reasoning-class model.
func (b Budget) IsReasoning() bool { return b.family == Reasoning }

// BudgetTable resolves a model identifier to its family budget.
// Adding a model family is a configuration change: list its prefix.
type BudgetTable struct {
	budgets  map[Family]int
	prefixes map[Family][]string
}

// Default budgets.
const (
	DefaultStandardMaxTokens  = 1000
	DefaultReasoningMaxTokens = 4000
)

// DefaultReasoningPrefixes lists model prefixes treated as reasoning-class.
var DefaultReasoningPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

// NewBudgetTable builds a table from per-family budgets and reasoning model prefixes.
// Non-positive budgets fall back to the defaults.
func NewBudgetTable(standard, reasoning int, reasoningPrefixes []string) BudgetTable {
	if standard <= 0 {
		standard = DefaultStandardMaxTokens
	}
	if reasoning <= 0 {
		reasoning = DefaultReasoningMaxTokens
	}
	prefixes := make([]string, 0, len(reasoningPrefixes))
	for _, p := range reasoningPrefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return BudgetTable{
		budgets: map[Family]int{
			Standard:  standard,
			Reasoning: reasoning,
		},
		prefixes: map[Family][]string{
			Reasoning: prefixes,
		},
	}
}

// DefaultBudgetTable returns the table used when nothing is configured.
func DefaultBudgetTable() BudgetTable {
	return NewBudgetTable(DefaultStandardMaxTokens, DefaultReasoningMaxTokens, DefaultReasoningPrefixes)
}

// Lookup returns the budget for a model. Unknown models get the standard budget.
// Provider-qualified names ("openai/o3-mini") match on the segment after the last slash.
func (t BudgetTable) Lookup(model string) Budget {
	name := strings.ToLower(model)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	for family, prefixes := range t.prefixes {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return Budget{family: family, maxTokens: t.budgets[family]}
			}
		}
	}
	return Budget{family: Standard, maxTokens: t.budgets[Standard]}
}
