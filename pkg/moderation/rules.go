package moderation

// categoryRule decides whether a classified category is debatable at a given
// severity. minDenySeverity is the lowest severity that gets denied;
// alwaysAllow and alwaysDeny win over severity.
type categoryRule struct {
	alwaysAllow     bool
	alwaysDeny      bool
	minDenySeverity Severity
	reason          string
}

var categoryRules = map[Category]categoryRule{
	CategorySafe:          {alwaysAllow: true},
	CategoryHumor:         {alwaysAllow: true},
	CategoryPolitical:     {alwaysAllow: true},
	CategoryControversial: {alwaysAllow: true},

	CategoryChildSafety: {alwaysDeny: true, reason: "content involving child safety is not debatable"},
	CategoryExtremist:   {alwaysDeny: true, reason: "extremist content is not debatable"},

	// Any real presence is denied; only a severity of none passes.
	CategorySelfHarm: {minDenySeverity: SeverityLow, reason: "self-harm content is not debatable"},
	CategorySexual:   {minDenySeverity: SeverityLow, reason: "sexual content is not permitted"},

	CategoryHate:    {minDenySeverity: SeverityMedium, reason: "hateful content targeting people or groups"},
	CategoryIllegal: {minDenySeverity: SeverityCritical, reason: "content promoting serious illegal activity"},
	CategoryViolent: {minDenySeverity: SeverityCritical, reason: "graphic violent content"},
}

// applyRules runs the decision table. Unknown categories fall back to a
// severity gate: anything above medium is denied.
func applyRules(c *Classification) (allowed bool, reason string) {
	rule, ok := categoryRules[c.Category]
	if !ok {
		if c.Severity.AtLeast(SeverityHigh) {
			return false, "unrecognized category at high severity"
		}
		return true, ""
	}

	switch {
	case rule.alwaysDeny:
		return false, rule.reason
	case rule.alwaysAllow:
		return true, ""
	case c.Severity.AtLeast(rule.minDenySeverity):
		return false, rule.reason
	default:
		return true, ""
	}
}
