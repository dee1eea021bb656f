package condition

import (
	"regexp"
	"strings"
	"time"
)

const maxPatternLength = 100

// riskyGroupPatterns are the classic nested-wildcard shapes. Go's regexp is
// RE2 and runs in linear time, so these cannot actually blow up here, but
// flow definitions are shared with runtimes where they can. Rejecting them
// keeps one definition meaning one thing everywhere.
var riskyGroupPatterns = []string{
	"(.*)*",
	"(.*)+",
	"(.+)*",
	"(.+)+",
	"(.*+)",
}

func (ev *Evaluator) matchPattern(pattern, input string) bool {
	if len(pattern) > maxPatternLength {
		ev.logger.Warn("pattern rejected: exceeds length limit",
			"length", len(pattern), "limit", maxPatternLength)
		return false
	}
	if reason, risky := classifyRiskyPattern(pattern); risky {
		ev.logger.Warn("pattern rejected: backtracking risk", "reason", reason)
		return false
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		// Log only the message, never the raw pattern or input values.
		ev.logger.Warn("pattern compile failed", "error", err.Error())
		return false
	}

	start := time.Now()
	matched := re.MatchString(input)
	if elapsed := time.Since(start); elapsed > ev.patternBudget {
		// Advisory telemetry; the match result still stands.
		ev.logger.Warn("pattern evaluation exceeded soft time budget",
			"elapsed", elapsed, "budget", ev.patternBudget)
	}
	return matched
}

// classifyRiskyPattern flags stacked quantifiers and nested wildcard groups.
// It is a heuristic: quantifier-on-quantifier shapes such as `(a+)+` or `a++`
// are rejected outright.
func classifyRiskyPattern(pattern string) (string, bool) {
	for _, p := range riskyGroupPatterns {
		if strings.Contains(pattern, p) {
			return "nested wildcard group", true
		}
	}

	prevQuantifier := false
	groupEndsQuantified := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			i++ // skip escaped character
			prevQuantifier = false
		case c == '*' || c == '+' || c == '?':
			if prevQuantifier {
				return "adjacent quantifiers", true
			}
			if groupEndsQuantified {
				return "quantified group under quantifier", true
			}
			prevQuantifier = true
		case c == ')':
			groupEndsQuantified = prevQuantifier
			prevQuantifier = false
			continue
		default:
			prevQuantifier = false
		}
		if c != ')' {
			groupEndsQuantified = false
		}
	}
	return "", false
}
