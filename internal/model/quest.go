package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength bounds Quest.Name in characters.
const MaxNameLength = 255

type Quest struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidationErrors maps a field name (or "base") to its messages in order.
type ValidationErrors map[string][]string

// Add appends a message for field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Count returns the total number of messages across all fields.
func (v ValidationErrors) Count() int {
	n := 0
	for _, msgs := range v {
		n += len(msgs)
	}
	return n
}

func (v ValidationErrors) Empty() bool {
	return v.Count() == 0
}

// ValidateQuest checks name and description the way the create and update
// endpoints need them. Name is expected to be trimmed already.
func ValidateQuest(name, description string) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "can't be blank")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		errs.Add("name", "is too long (maximum is 255 characters)")
	}
	return errs
}
