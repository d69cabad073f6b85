package analysis

import (
	"sort"
	"strings"
)

// categoryRule defines a keyword rule for heuristic document categorization.
// Markers cover the languages the pipeline commonly sees; matching is
// case-insensitive substring counting.
type categoryRule struct {
	category DocumentCategory
	keywords []string
	weight   float64
	insight  string
	risk     string
}

var defaultCategoryRules = []categoryRule{
	{
		category: CategoryLegal,
		keywords: []string{
			"agreement", "contract", "hereby", "whereas", "party", "terms and conditions",
			"governing law", "liability", "הסכם", "חוזה", "תנאים", "عقد", "اتفاقية",
			"договор", "соглашение", "合同", "契約",
		},
		weight:  1.0,
		insight: "Document contains contractual language",
		risk:    "Review obligations and liability clauses before signing",
	},
	{
		category: CategoryEmployment,
		keywords: []string{
			"employee", "employer", "salary", "position", "employment", "termination",
			"benefits", "probation", "עובד", "מעסיק", "משכורת", "שכר", "موظف", "راتب",
			"сотрудник", "зарплата", "雇用", "员工",
		},
		weight:  1.0,
		insight: "Document relates to an employment relationship",
		risk:    "Verify compensation and termination terms",
	},
	{
		category: CategoryMedical,
		keywords: []string{
			"patient", "diagnosis", "treatment", "physician", "medical", "prescription",
			"consent to treatment", "מטופל", "אבחנה", "טיפול", "رعاية", "مريض",
			"пациент", "диагноз", "患者", "診断",
		},
		weight:  1.0,
		insight: "Document contains medical information",
		risk:    "Contains health data; handle per privacy requirements",
	},
	{
		category: CategoryFinancial,
		keywords: []string{
			"invoice", "payment", "loan", "interest rate", "account", "amount due",
			"balance", "billing", "תשלום", "חשבונית", "הלוואה", "فاتورة", "قرض",
			"платеж", "счет", "发票", "支払",
		},
		weight:  1.0,
		insight: "Document involves financial obligations",
		risk:    "Confirm amounts and payment schedules",
	},
}

// minCategoryMatches is the number of marker hits required before a
// category is preferred over "general".
const minCategoryMatches = 2

// DetectCategory scores the category keyword rules against content and
// returns the best category with its supporting insight strings. The score
// collapses to a deterministic priority: highest weighted match count wins,
// ties broken by rule order. Content below the match threshold yields
// CategoryGeneral with no insights.
func DetectCategory(content string) (DocumentCategory, []string, string) {
	lower := strings.ToLower(content)

	type scored struct {
		rule    categoryRule
		index   int
		matches int
		score   float64
	}

	results := make([]scored, 0, len(defaultCategoryRules))
	for i, rule := range defaultCategoryRules {
		matches := 0
		for _, kw := range rule.keywords {
			matches += strings.Count(lower, strings.ToLower(kw))
		}
		if matches >= minCategoryMatches {
			results = append(results, scored{
				rule:    rule,
				index:   i,
				matches: matches,
				score:   float64(matches) * rule.weight,
			})
		}
	}

	if len(results) == 0 {
		return CategoryGeneral, nil, ""
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].index < results[j].index
	})

	insights := make([]string, 0, len(results))
	for _, r := range results {
		insights = append(insights, r.rule.insight)
	}

	best := results[0].rule
	return best.category, insights, best.risk
}
