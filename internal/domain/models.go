package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// MaxHistoryEntries caps every service's history log.
const MaxHistoryEntries = 1000

// TimestampLayout is ISO-8601 in UTC with millisecond precision,
// e.g. 2024-05-01T12:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// ServiceConfig is one entry of the configured services list.
// Secret is only sent when Auth is true.
type ServiceConfig struct {
	Name   string `json:"name" mapstructure:"name"`
	URL    string `json:"url" mapstructure:"url"`
	Auth   bool   `json:"auth" mapstructure:"auth"`
	Secret string `json:"secret,omitempty" mapstructure:"secret"`
}

// Slug is the storage key of the service's history log.
func (s ServiceConfig) Slug() string { return Slug(s.Name) }

// StatusRecord is the outcome of one probe. ResponseTime is in milliseconds.
type StatusRecord struct {
	Status       Status `yaml:"status" json:"status"`
	Timestamp    string `yaml:"timestamp" json:"timestamp"`
	ResponseTime int64  `yaml:"responseTime" json:"responseTime"`
}

// FormatTimestamp renders t the way history logs store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var (
	ErrInvalidStatus        = errors.New("status must be up or down")
	ErrInvalidTimestamp     = errors.New("timestamp must be ISO-8601")
	ErrNegativeResponseTime = errors.New("responseTime must not be negative")
)

// Validate reports whether r is a well-formed record.
func Validate(r StatusRecord) error {
	if r.Status != StatusUp && r.Status != StatusDown {
		return ErrInvalidStatus
	}
	if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
		return ErrInvalidTimestamp
	}
	if r.ResponseTime < 0 {
		return ErrNegativeResponseTime
	}
	return nil
}

// whitespaceRun matches the ECMAScript \s class (Unicode spaces, line
// terminators and the BOM), which is wider than RE2's \s. Slugs of existing
// history files were derived with it.
var whitespaceRun = regexp.MustCompile(`[\t\n\v\f\r \x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]+`)

// Slug lowercases name and collapses every run of whitespace into "-".
func Slug(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}
