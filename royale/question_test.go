/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestion(id string) Question {
	return Question{
		ID:     id,
		Prompt: "Question " + id,
		Choices: []Choice{
			{ID: "a", Text: "right"},
			{ID: "b", Text: "wrong"},
			{ID: "c", Text: "also wrong"},
		},
		CorrectAnswerID: "a",
	}
}

func testBank(n int) []Question {
	bank := make([]Question, n)
	for i := range bank {
		bank[i] = testQuestion(fmt.Sprintf("q%d", i+1))
	}
	return bank
}

func TestQuestionValidate(t *testing.T) {
	assert.NoError(t, testQuestion("q1").Validate())

	tests := map[string]func(*Question){
		"no id":          func(q *Question) { q.ID = "" },
		"no prompt":      func(q *Question) { q.Prompt = "" },
		"one choice":     func(q *Question) { q.Choices = q.Choices[:1] },
		"blank choice":   func(q *Question) { q.Choices[1].ID = "" },
		"dup choice":     func(q *Question) { q.Choices[1].ID = "a" },
		"missing answer": func(q *Question) { q.CorrectAnswerID = "z" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			q := testQuestion("q1")
			mutate(&q)
			assert.Error(t, q.Validate())
		})
	}
}

func TestValidateBank(t *testing.T) {
	assert.NoError(t, ValidateBank(testBank(3)))
	assert.ErrorIs(t, ValidateBank(nil), ErrInvalidConfig)

	dup := append(testBank(2), testQuestion("q1"))
	assert.ErrorIs(t, ValidateBank(dup), ErrInvalidConfig)

	bad := testBank(2)
	bad[1].Prompt = ""
	assert.ErrorIs(t, ValidateBank(bad), ErrInvalidConfig)
}

func TestViewHidesAnswer(t *testing.T) {
	v := testQuestion("q1").View()

	assert.Equal(t, "q1", v.ID)
	assert.Len(t, v.Choices, 3)
	assert.Equal(t, "right", v.Choices[0].Text)
}

func TestQuestionCursor(t *testing.T) {
	c := NewQuestionCursor(testBank(2))
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Number())
	assert.False(t, c.Exhausted())

	q, ok := c.Advance(start)
	require.True(t, ok)
	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, 1, c.Number())
	assert.Equal(t, start, c.StartedAt())

	q, ok = c.Advance(start.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, "q2", q.ID)
	assert.Equal(t, 2, c.Number())
	assert.True(t, c.Exhausted())

	_, ok = c.Advance(start.Add(2 * time.Minute))
	assert.False(t, ok)
	assert.Equal(t, 2, c.Number())
	assert.Equal(t, 2, c.Total())
}
