package pipeline

import "regexp"

// boldPattern matches non-greedy markdown bold spans.
var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// BoldToHTML rewrites markdown **bold** spans to the host application's
// <b> markup. Models emit markdown regardless of instructions, so this runs
// on every text field before persistence.
func BoldToHTML(s string) string {
	return boldPattern.ReplaceAllString(s, "<b>$1</b>")
}

// normalizeQuestion applies markup conversion to every text field.
func normalizeQuestion(q *Question) {
	q.Question = BoldToHTML(q.Question)
	q.AnswerA = BoldToHTML(q.AnswerA)
	q.AnswerB = BoldToHTML(q.AnswerB)
	q.AnswerC = BoldToHTML(q.AnswerC)
	q.AnswerD = BoldToHTML(q.AnswerD)
	q.Explanation = BoldToHTML(q.Explanation)
}
