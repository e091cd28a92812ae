package dataset

import "github.com/zkbaum/handai/internal/model"

// SelectPerCategory returns up to n questions per category, drawn only from
// the given categories. Categories fill opportunistically as matching
// questions are scanned, preserving input order; nothing is pre-grouped.
func SelectPerCategory(questions []*model.ExamQuestion, n int, categories []model.Category) []*model.ExamQuestion {
	allowed := make(map[model.Category]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	counts := make(map[model.Category]int)
	var selected []*model.ExamQuestion
	for _, q := range questions {
		if !allowed[q.Category] {
			continue
		}
		if counts[q.Category] < n {
			counts[q.Category]++
			selected = append(selected, q)
		}
	}
	return selected
}

// KNNExemplars fills n exemplars from the target category in input order.
// When the category holds fewer than n questions, the remainder is padded
// with one question from each other category, in input scan order. If several
// categories are short of questions the result may hold fewer than n
// entries; that is the documented contract, not an error.
func KNNExemplars(questions []*model.ExamQuestion, n int, category model.Category) []*model.ExamQuestion {
	var inCategory []*model.ExamQuestion
	for _, q := range questions {
		if q.Category == category {
			inCategory = append(inCategory, q)
		}
	}
	if len(inCategory) >= n {
		return inCategory[:n]
	}

	var others []model.Category
	for _, c := range model.Categories() {
		if c != category {
			others = append(others, c)
		}
	}
	padding := SelectPerCategory(questions, 1, others)
	if need := n - len(inCategory); len(padding) > need {
		padding = padding[:need]
	}
	return append(inCategory, padding...)
}
