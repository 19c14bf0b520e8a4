package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoldToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single span", "the **mitochondrion** is key", "the <b>mitochondrion</b> is key"},
		{"multiple spans", "**ATP** and **ADP**", "<b>ATP</b> and <b>ADP</b>"},
		{"no markup", "plain text", "plain text"},
		{"unclosed marker", "a ** b", "a ** b"},
		{"empty span left alone", "a **** b", "a **** b"},
		{"spans do not nest", "**a **b** c**", "<b>a </b>b<b> c</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoldToHTML(tt.in))
		})
	}
}

func TestNormalizeQuestion(t *testing.T) {
	q := Question{
		Question:      "What makes **ATP**?",
		AnswerA:       "**Mitochondria**",
		AnswerB:       "b",
		AnswerC:       "c",
		AnswerD:       "d",
		CorrectAnswer: "a",
		Explanation:   "**Mitochondria** do.",
	}
	normalizeQuestion(&q)
	assert.Equal(t, "What makes <b>ATP</b>?", q.Question)
	assert.Equal(t, "<b>Mitochondria</b>", q.AnswerA)
	assert.Equal(t, "<b>Mitochondria</b> do.", q.Explanation)
}
