/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"fmt"
	"time"

	"github.com/Seednode/quizroyale/protocol"
)

type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is read-only quiz content supplied by the question bank.
type Question struct {
	ID              string   `json:"id"`
	Prompt          string   `json:"prompt"`
	Choices         []Choice `json:"choices"`
	CorrectAnswerID string   `json:"correctAnswerId"`
}

// Validate checks structural shape only: a prompt, at least two uniquely
// identified choices, and a correct answer among them.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question has no id")
	}
	if q.Prompt == "" {
		return fmt.Errorf("question %s has no prompt", q.ID)
	}
	if len(q.Choices) < 2 {
		return fmt.Errorf("question %s needs at least two choices", q.ID)
	}

	seen := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		if c.ID == "" {
			return fmt.Errorf("question %s has a choice without an id", q.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("question %s has duplicate choice %s", q.ID, c.ID)
		}
		seen[c.ID] = true
	}

	if !seen[q.CorrectAnswerID] {
		return fmt.Errorf("question %s correct answer %q is not a choice", q.ID, q.CorrectAnswerID)
	}

	return nil
}

func (q Question) HasChoice(id string) bool {
	for _, c := range q.Choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (q Question) IsCorrect(choiceID string) bool {
	return choiceID == q.CorrectAnswerID
}

// View strips the correct answer for broadcasting.
func (q Question) View() protocol.QuestionView {
	choices := make([]protocol.ChoiceView, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = protocol.ChoiceView{ID: c.ID, Text: c.Text}
	}

	return protocol.QuestionView{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Choices: choices,
	}
}

// ValidateBank checks every question and rejects duplicate ids.
func ValidateBank(bank []Question) error {
	if len(bank) == 0 {
		return fmt.Errorf("%w: question bank is empty", ErrInvalidConfig)
	}

	ids := make(map[string]bool, len(bank))
	for _, q := range bank {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if ids[q.ID] {
			return fmt.Errorf("%w: duplicate question id %s", ErrInvalidConfig, q.ID)
		}
		ids[q.ID] = true
	}

	return nil
}

// QuestionCursor walks the bank in order and remembers when the current
// question started.
type QuestionCursor struct {
	bank      []Question
	index     int
	startedAt time.Time
}

func NewQuestionCursor(bank []Question) *QuestionCursor {
	return &QuestionCursor{
		bank:  append([]Question(nil), bank...),
		index: -1,
	}
}

// Advance moves to the next question and stamps its start time. It returns
// false once the bank is exhausted.
func (c *QuestionCursor) Advance(now time.Time) (Question, bool) {
	if c.index+1 >= len(c.bank) {
		c.index = len(c.bank)
		return Question{}, false
	}

	c.index++
	c.startedAt = now

	return c.bank[c.index], true
}

// Current returns the active question, if any.
func (c *QuestionCursor) Current() (Question, bool) {
	if c.index < 0 || c.index >= len(c.bank) {
		return Question{}, false
	}
	return c.bank[c.index], true
}

func (c *QuestionCursor) StartedAt() time.Time {
	return c.startedAt
}

// Number is the 1-based position of the current question, 0 before the
// first.
func (c *QuestionCursor) Number() int {
	if c.index < 0 {
		return 0
	}
	if c.index >= len(c.bank) {
		return len(c.bank)
	}
	return c.index + 1
}

func (c *QuestionCursor) Total() int {
	return len(c.bank)
}

func (c *QuestionCursor) Exhausted() bool {
	return c.index+1 >= len(c.bank)
}
