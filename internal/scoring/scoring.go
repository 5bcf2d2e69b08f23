// Package scoring computes quiz scores server-side. Client-reported
// correctness is never trusted; the answer key always comes from storage.
package scoring

// SubmittedAnswer is one selected option as sent by the client.
type SubmittedAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

// Result carries per-question correctness for persistence and review.
type Result struct {
	QuestionID     string
	SelectedOption string
	IsCorrect      bool
}

// Score counts answers whose selected option matches the answer key. A
// question absent from the key scores false regardless of the selection, and
// questions the user never answered contribute nothing.
func Score(answers []SubmittedAnswer, answerKey map[string]string) (int, []Result) {
	score := 0
	results := make([]Result, 0, len(answers))
	for _, ans := range answers {
		correct, ok := answerKey[ans.QuestionID]
		isCorrect := ok && ans.SelectedOption == correct
		if isCorrect {
			score++
		}
		results = append(results, Result{
			QuestionID:     ans.QuestionID,
			SelectedOption: ans.SelectedOption,
			IsCorrect:      isCorrect,
		})
	}
	return score, results
}
