// Package scoring awards points for one prediction against a played result.
package scoring

import "github.com/osvo/club-world-cup-tracker/internal/domain/model"

// Rule names the scoring rule that decided a prediction's points.
type Rule int

// Rules in priority order; the first one that applies wins.
const (
	RuleAbsent Rule = iota
	RuleExact
	RuleGoalDifference
	RuleOutcome
	RuleMiss
)

var ruleNames = [...]string{
	RuleAbsent:         "absent",
	RuleExact:          "exact",
	RuleGoalDifference: "goal_difference",
	RuleOutcome:        "outcome",
	RuleMiss:           "miss",
}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return "unknown"
	}
	return ruleNames[r]
}

// Points returns the value awarded by the rule.
func (r Rule) Points() model.PointValue {
	switch r {
	case RuleExact:
		return model.PointsExact
	case RuleGoalDifference:
		return model.PointsGoalDifference
	case RuleOutcome:
		return model.PointsOutcome
	default:
		return model.PointsNone
	}
}

// Classify reports which rule applies to predicted against actual.
//
// The goal-difference rule also covers any drawn prediction against a drawn
// result. The outcome rule compares signs literally, so a draw never shares an
// outcome with a decisive result.
func Classify(predicted model.Prediction, actual model.Score) Rule {
	p, ok := predicted.Score()
	if !ok {
		return RuleAbsent
	}
	if p == actual {
		return RuleExact
	}
	dp, da := p.GoalDifference(), actual.GoalDifference()
	if dp == da {
		return RuleGoalDifference
	}
	if sign(dp) == sign(da) {
		return RuleOutcome
	}
	return RuleMiss
}

// Evaluate returns the points predicted earns against actual.
func Evaluate(predicted model.Prediction, actual model.Score) model.PointValue {
	return Classify(predicted, actual).Points()
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
