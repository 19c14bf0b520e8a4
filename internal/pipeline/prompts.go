package pipeline

import (
	"fmt"
	"strings"
)

// Schema names presented to the provider as tool / response-format names.
const (
	summarySchemaName = "record_topic_summary"
	draftSchemaName   = "record_questions"
	reviewSchemaName  = "record_reviewed_question"
	defaultSystemRole = "You are an expert educator who writes rigorous multiple-choice study questions."
	summarySystemRole = "You are an expert at distilling lecture material into study summaries."
)

func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`Read the following lecture material and produce a topic summary.

Identify the overall subject and summarize the material faithfully. Then
list, each only when the material supports it:
- the key concepts a student must master
- case studies or concrete examples the lecture uses
- methodologies or metrics it introduces
- practical recommendations it gives

Do not invent facts that are not in the material.

Lecture material:

%s`, transcript)
}

// renderSummary formats a summary for inclusion in downstream prompts.
func renderSummary(s *TopicSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\nSummary:\n%s\n", s.Title, s.Summary)
	writeList(&b, "Key concepts", s.KeyConcepts)
	writeList(&b, "Case studies and examples", s.CaseStudies)
	writeList(&b, "Methodologies and metrics", s.Methodologies)
	writeList(&b, "Practical recommendations", s.Recommendations)
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func draftPrompt(summary *TopicSummary, transcript string, questionCount int) string {
	return fmt.Sprintf(`Write %d multiple-choice study questions covering the lecture below.

Rules:
- Each question has exactly four answers (a, b, c, d) and exactly one is correct.
- Distribute correct answers across positions; do not favor one letter.
- Wrong answers must be plausible, not absurd.
- The explanation must say why the correct answer is right. Emphasize key
  terms with markdown bold (**term**).
- Cover distinct concepts; do not ask the same thing twice.
- Ground every question in the lecture itself; the summary guides
  coverage but the lecture text is the authority.

%s

Lecture:

%s`, questionCount, renderSummary(summary), transcript)
}

func reviewPrompt(q *Question, summary *TopicSummary) string {
	return fmt.Sprintf(`Review the following multiple-choice question for factual accuracy,
exactly one correct answer, and clarity. Judge it against the lecture
summary below. If it is sound, return it unchanged with review result
"satisfactory". If it has any defect, fix it, return the revised question
with review result "needs_improvement", and justify the changes. Always
return the full question.

Lecture summary:
%s

Question: %s
a) %s
b) %s
c) %s
d) %s
Correct answer: %s
Explanation: %s`,
		renderSummary(summary),
		q.Question, q.AnswerA, q.AnswerB, q.AnswerC, q.AnswerD,
		q.CorrectAnswer, q.Explanation)
}
