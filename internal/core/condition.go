package core

import (
	"strings"
)

// ConditionEnv holds the variables REP-149 conditions are evaluated
// against.
type ConditionEnv map[string]string

// NoeticConditionEnv is the evaluation context for ROS 1 Noetic on
// Python 3.
func NoeticConditionEnv() ConditionEnv {
	return ConditionEnv{
		"ROS_VERSION":        "1",
		"ROS_PYTHON_VERSION": "3",
		"ROS_DISTRO":         "noetic",
	}
}

// EvaluateCondition evaluates a REP-149 condition attribute such as
// `$ROS_PYTHON_VERSION == 3 and $ROS_VERSION != 2`. `and` binds tighter
// than `or`; parentheses are not supported and make the expression fail
// (ok is false). An empty condition is true.
func EvaluateCondition(expr string, env ConditionEnv) (result bool, ok bool) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return true, true
	}
	// Each entry is one and-group; the groups are or-ed together.
	groups := []bool{true}
	for i := 0; i < len(fields); {
		if i > 0 {
			switch fields[i] {
			case "and":
			case "or":
				groups = append(groups, true)
			default:
				return false, false
			}
			i++
		}
		if i+3 > len(fields) {
			return false, false
		}
		value, valid := compareTerm(fields[i], fields[i+1], fields[i+2], env)
		if !valid {
			return false, false
		}
		last := len(groups) - 1
		groups[last] = groups[last] && value
		i += 3
	}
	for _, group := range groups {
		if group {
			return true, true
		}
	}
	return false, true
}

func compareTerm(left string, op string, right string, env ConditionEnv) (bool, bool) {
	if strings.ContainsAny(left+right, "()") {
		return false, false
	}
	l := expandTerm(left, env)
	r := expandTerm(right, env)
	switch op {
	case "==":
		return l == r, true
	case "!=":
		return l != r, true
	default:
		return false, false
	}
}

func expandTerm(term string, env ConditionEnv) string {
	term = strings.Trim(term, `"'`)
	if strings.HasPrefix(term, "$") {
		return env[strings.TrimPrefix(term, "$")]
	}
	return term
}
