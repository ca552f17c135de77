package kernels

import "strings"

// MinimiseIsBest lists the questions for which a smaller mean is the
// better outcome (overweight %, obesity %, ...). The canonical form
// drops the stray ")" present in the original catalog string (spec §9,
// open question (c)).
var MinimiseIsBest = []string{
	"Percent of adults aged 18 years and older who have an overweight classification",
	"Percent of adults aged 18 years and older who have obesity",
	"Percent of adults who engage in no leisure-time physical activity",
	"Percent of adults who report consuming fruit less than one time daily",
	"Percent of adults who report consuming vegetables less than one time daily",
}

// MaximiseIsBest lists the questions for which a larger mean is the
// better outcome.
var MaximiseIsBest = []string{
	"Percent of adults who achieve at least 150 minutes a week of moderate-intensity aerobic physical activity or 75 minutes a week of vigorous-intensity aerobic activity (or an equivalent combination)",
	"Percent of adults who achieve at least 150 minutes a week of moderate-intensity aerobic physical activity or 75 minutes a week of vigorous-intensity aerobic physical activity and engage in muscle-strengthening activities on 2 or more days a week",
	"Percent of adults who achieve at least 300 minutes a week of moderate-intensity aerobic physical activity or 150 minutes a week of vigorous-intensity aerobic activity (or an equivalent combination)",
	"Percent of adults who engage in muscle-strengthening activities on 2 or more days a week",
}

// orientation tags a question's ranking direction. unranked means the
// question is absent from both catalog lists.
type orientation int

const (
	unranked orientation = iota
	minimiseIsBest
	maximiseIsBest
)

func questionOrientation(question string) orientation {
	for _, q := range MinimiseIsBest {
		if q == question {
			return minimiseIsBest
		}
	}
	for _, q := range MaximiseIsBest {
		if q == question {
			return maximiseIsBest
		}
	}
	return unranked
}

// categoryPriority orders StratificationCategory1 values per the
// Glossary: Age (years) 1, Education 2, Gender 3, Income 4,
// Race/Ethnicity 5, Total 6. Unknown categories sort last.
func categoryPriority(category string) int {
	switch {
	case strings.HasPrefix(category, "Age"):
		return 1
	case strings.HasPrefix(category, "Education"):
		return 2
	case strings.HasPrefix(category, "Gender"):
		return 3
	case strings.HasPrefix(category, "Income"):
		return 4
	case strings.HasPrefix(category, "Race"):
		return 5
	case category == "Total":
		return 6
	default:
		return 99
	}
}

var ageOrder = []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65+"}

var educationOrder = []string{
	"Less than high school",
	"High school graduate",
	"Some college or technical school",
	"College graduate",
}

var incomeOrder = []string{
	"Less than $15,000",
	"$15,000",
	"$25,000",
	"$35,000",
	"$50,000",
	"$75,000",
	"Data not reported",
}

// stratumPriority orders Stratification1 values within a category using
// the intra-category orders from the Glossary. Unknown strata for an
// ordered category sort after the known ones but before "unknown
// category" overflow; categories with no defined intra-order (Gender,
// Race/Ethnicity, Total) sort lexicographically as a stable fallback.
func stratumPriority(category, stratum string) int {
	var order []string
	switch {
	case strings.HasPrefix(category, "Age"):
		order = ageOrder
	case strings.HasPrefix(category, "Education"):
		order = educationOrder
	case strings.HasPrefix(category, "Income"):
		order = incomeOrder
	default:
		return -1
	}
	for i, s := range order {
		if strings.Contains(stratum, s) || strings.HasPrefix(stratum, s) {
			return i
		}
	}
	return len(order)
}
