package academic

// percent returns round(100 * part / total), rounding halves up, or 0 when total is 0.
// Integer arithmetic keeps 1/3 -> 33 and 2/3 -> 67 exact on every platform.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

// ScoreSubmission grades answers (question index -> selected option index) against the quiz.
// Unanswered questions count as incorrect. The result is in 0..100.
func ScoreSubmission(quiz Quiz, answers map[int]int) int {
	var correct int
	for i, q := range quiz.Questions {
		if selected, ok := answers[i]; ok && selected == q.CorrectIndex {
			correct++
		}
	}
	return percent(correct, len(quiz.Questions))
}
