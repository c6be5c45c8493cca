/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package questions loads question banks and keeps them in a store that
// rooms draw from by set name.
package questions

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/Seednode/quizroyale/royale"
)

const DefaultSet = "default"

var ErrSetNotFound = errors.New("question set not found")

// Store holds named question banks.
type Store interface {
	Get(ctx context.Context, set string) ([]royale.Question, error)
	Put(ctx context.Context, set string, bank []royale.Question) error
	Sets(ctx context.Context) ([]string, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

//go:embed default.json
var defaultBank []byte

// Default returns the bundled question bank.
func Default() []royale.Question {
	bank, err := Parse(defaultBank)
	if err != nil {
		panic("bundled question bank is invalid: " + err.Error())
	}
	return bank
}

// entry accepts both the native question shape and the older
// {question, options, correctAnswer} export.
type entry struct {
	ID              json.RawMessage   `json:"id"`
	Prompt          string            `json:"prompt"`
	Choices         []royale.Choice   `json:"choices"`
	CorrectAnswerID string            `json:"correctAnswerId"`
	Question        string            `json:"question"`
	Options         map[string]string `json:"options"`
	CorrectAnswer   string            `json:"correctAnswer"`
}

type document struct {
	Questions []entry `json:"questions"`
}

// Parse decodes a bank from either a bare array or {"questions": [...]},
// and validates it.
func Parse(data []byte) ([]royale.Question, error) {
	var entries []entry

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parsing question bank: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing question bank: %w", err)
		}
		entries = doc.Questions
	}

	bank := make([]royale.Question, 0, len(entries))
	for i, e := range entries {
		q, err := e.question(i)
		if err != nil {
			return nil, err
		}
		bank = append(bank, q)
	}

	if err := royale.ValidateBank(bank); err != nil {
		return nil, err
	}

	return bank, nil
}

func (e entry) question(index int) (royale.Question, error) {
	id, err := entryID(e.ID)
	if err != nil {
		return royale.Question{}, fmt.Errorf("question %d: %w", index+1, err)
	}
	if id == "" {
		id = "q" + strconv.Itoa(index+1)
	}

	if len(e.Options) == 0 {
		return royale.Question{
			ID:              id,
			Prompt:          e.Prompt,
			Choices:         e.Choices,
			CorrectAnswerID: e.CorrectAnswerID,
		}, nil
	}

	keys := make([]string, 0, len(e.Options))
	for k := range e.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	choices := make([]royale.Choice, len(keys))
	for i, k := range keys {
		choices[i] = royale.Choice{ID: k, Text: e.Options[k]}
	}

	prompt := e.Prompt
	if prompt == "" {
		prompt = e.Question
	}

	correct := e.CorrectAnswerID
	if correct == "" {
		correct = e.CorrectAnswer
	}

	return royale.Question{
		ID:              id,
		Prompt:          prompt,
		Choices:         choices,
		CorrectAnswerID: correct,
	}, nil
}

// entryID accepts string or numeric ids.
func entryID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number, got %s", raw)
	}

	return n.String(), nil
}

func LoadFile(path string) ([]royale.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	bank, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return bank, nil
}
