package moderation

// Category is the closed taxonomy a verdict can fall into.
type Category string

const (
	CategorySafe          Category = "safe"
	CategoryHumor         Category = "humor"
	CategoryPolitical     Category = "political"
	CategoryControversial Category = "controversial"
	CategoryExtremist     Category = "extremist"
	CategorySexual        Category = "sexual"
	CategoryViolent       Category = "violent"
	CategorySelfHarm      Category = "self_harm"
	CategoryHate          Category = "hate"
	CategoryIllegal       Category = "illegal"
	CategoryChildSafety   Category = "child_safety"
)

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Target states who or what the content is directed at.
type Target string

const (
	TargetNone      Target = "none"
	TargetHuman     Target = "human"
	TargetGroup     Target = "group"
	TargetObject    Target = "object"
	TargetAnimal    Target = "animal"
	TargetFictional Target = "fictional"
)

// Layer names the pipeline stage that produced the final verdict.
type Layer string

const (
	LayerKeyword       Layer = "keyword_risk"
	LayerClassifier    Layer = "semantic_classifier"
	LayerEmbedding     Layer = "embedding_similarity"
	LayerBusinessRules Layer = "business_rules"
	LayerModerationAPI Layer = "moderation_api"
)

// Result is the outcome of a full moderation-stack run. It is constructed
// once and never mutated afterwards.
type Result struct {
	Allowed     bool           `json:"allowed"`
	Category    Category       `json:"category"`
	Severity    Severity       `json:"severity"`
	Target      Target         `json:"target"`
	RiskScore   float64        `json:"risk_score"`
	Layer       Layer          `json:"layer"`
	BlockReason string         `json:"block_reason,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// Classification is what the semantic classifier layer returns.
type Classification struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Target      Target   `json:"target"`
	IsHumor     bool     `json:"is_humor"`
	IsFictional bool     `json:"is_fictional"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// SafeClassification is the fail-open default used when the classifier
// provider is unavailable.
func SafeClassification() *Classification {
	return &Classification{
		Category: CategorySafe,
		Severity: SeverityNone,
		Target:   TargetNone,
	}
}

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is as severe as other or more so.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

func ValidCategory(c Category) bool {
	switch c {
	case CategorySafe, CategoryHumor, CategoryPolitical, CategoryControversial,
		CategoryExtremist, CategorySexual, CategoryViolent, CategorySelfHarm,
		CategoryHate, CategoryIllegal, CategoryChildSafety:
		return true
	}
	return false
}

func ValidSeverity(s Severity) bool {
	_, ok := severityRank[s]
	return ok
}
