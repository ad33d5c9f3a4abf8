package moderation

import "regexp"

// Keyword buckets feed the risk score only; they never block on their own.
// The score informs the external-gate skip decision and the final result.
const (
	criticalRiskScore = 0.9
	highRiskScore     = 0.6
	mediumRiskScore   = 0.3
)

var criticalKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(child\s+(?:porn|abuse|exploitation)|csam)`),
	regexp.MustCompile(`(?i)(mass\s+(?:shooting|casualty)|school\s+shooting)`),
	regexp.MustCompile(`(?i)(how\s+to\s+(?:make|build)\s+(?:a\s+)?(?:bomb|explosive|nerve\s+agent))`),
	regexp.MustCompile(`(?i)(ethnic\s+cleansing|genocide\s+(?:is|was)\s+(?:good|justified))`),
}

var highKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(kill(?:ing)?|murder(?:ing)?|assassinat\w+)\b`),
	regexp.MustCompile(`(?i)\b(terroris[mt]\w*|bomb(?:ing)?|massacre)\b`),
	regexp.MustCompile(`(?i)\b(suicide|self[\s-]?harm|cutting\s+myself)\b`),
	regexp.MustCompile(`(?i)\b(rape|sexual\s+assault|molest\w*)\b`),
}

var mediumKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(fight(?:ing)?|punch(?:ing)?|attack(?:ing)?|destroy(?:ing)?)\b`),
	regexp.MustCompile(`(?i)\b(drugs?|cocaine|heroin|meth)\b`),
	regexp.MustCompile(`(?i)\b(gun[s]?|weapon[s]?|knife|knives)\b`),
	regexp.MustCompile(`(?i)\b(steal(?:ing)?|rob(?:bing|bery)?|fraud)\b`),
}

// ScoreKeywords returns a risk score in [0,1], taking the maximum across
// all matched buckets.
func ScoreKeywords(content string) float64 {
	score := 0.0
	for _, re := range mediumKeywords {
		if re.MatchString(content) {
			score = mediumRiskScore
			break
		}
	}
	for _, re := range highKeywords {
		if re.MatchString(content) {
			score = highRiskScore
			break
		}
	}
	for _, re := range criticalKeywords {
		if re.MatchString(content) {
			score = criticalRiskScore
			break
		}
	}
	return score
}
