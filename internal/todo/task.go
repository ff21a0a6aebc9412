package todo

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// KeyPrefix is the namespace shared by every task key.
const KeyPrefix = "todo:"

// TimestampLayout renders DateCreated, e.g. "June 10, 2024 at 02:53 PM".
const TimestampLayout = "January 2, 2006 at 03:04 PM"

// ErrInvalidKey is returned when a key is not of the form "todo:<id>".
var ErrInvalidKey = errors.New("invalid task key")

// Task is a single to-do entry.
//
// DateCreated is refreshed on every edit, so it reads as "last modified".
type Task struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
	DateCreated string `json:"dateCreated" yaml:"dateCreated"`
}

// IsZero returns true if the task has no id.
func (t Task) IsZero() bool {
	return t.ID == 0
}

// Matches reports whether the title or description contains term,
// ignoring case. An empty term matches every task.
func (t Task) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// Key returns the storage key for id.
func Key(id int64) string {
	return KeyPrefix + strconv.FormatInt(id, 10)
}

// ParseKey extracts the id from a storage key.
func ParseKey(key string) (int64, error) {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok || rest == "" {
		return 0, ErrInvalidKey
	}
	// Reject "+1", "01" and similar spellings so Key(ParseKey(k)) == k.
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != rest {
		return 0, ErrInvalidKey
	}
	return id, nil
}

// FormatTimestamp renders t in the DateCreated layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
