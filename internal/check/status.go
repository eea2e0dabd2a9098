package check

import (
	"fmt"
	"strings"
)

// StatusCode is the severity of one finding. Codes are totally ordered:
// SKIP < INFO < PASS < WARN < FAIL < ERROR.
type StatusCode string

const (
	StatusSkip  StatusCode = "SKIP"
	StatusInfo  StatusCode = "INFO"
	StatusPass  StatusCode = "PASS"
	StatusWarn  StatusCode = "WARN"
	StatusFail  StatusCode = "FAIL"
	StatusError StatusCode = "ERROR"
)

// AllStatusCodes lists codes from most to least severe, the order reports use.
var AllStatusCodes = []StatusCode{StatusError, StatusFail, StatusWarn, StatusInfo, StatusSkip, StatusPass}

func (s StatusCode) Valid() bool {
	switch s {
	case StatusSkip, StatusInfo, StatusPass, StatusWarn, StatusFail, StatusError:
		return true
	}
	return false
}

// Rank returns the position in the severity lattice (higher = worse).
// Unknown codes rank below SKIP.
func (s StatusCode) Rank() int {
	switch s {
	case StatusSkip:
		return 0
	case StatusInfo:
		return 1
	case StatusPass:
		return 2
	case StatusWarn:
		return 3
	case StatusFail:
		return 4
	case StatusError:
		return 5
	default:
		return -1
	}
}

// AtLeast reports whether s is as severe as other or worse.
func (s StatusCode) AtLeast(other StatusCode) bool {
	return s.Rank() >= other.Rank()
}

// ParseStatusCode parses a code case-insensitively.
func ParseStatusCode(s string) (StatusCode, error) {
	code := StatusCode(strings.ToUpper(strings.TrimSpace(s)))
	if !code.Valid() {
		return "", fmt.Errorf("check.ParseStatusCode: unknown status %q", s)
	}
	return code, nil
}

// Status is one finding reported by a check invocation.
type Status struct {
	Severity StatusCode `json:"severity" yaml:"severity"`
	Code     string     `json:"code,omitempty" yaml:"code,omitempty"`
	Message  string     `json:"message,omitempty" yaml:"message,omitempty"`
}

func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**: ", s.Severity)
	if s.Code != "" {
		fmt.Fprintf(&b, "[%s]: ", s.Code)
	}
	b.WriteString(s.Message)
	return b.String()
}

func Pass() Status { return Status{Severity: StatusPass} }

func Fail(code, message string) Status {
	return Status{Severity: StatusFail, Code: code, Message: message}
}

func Warn(code, message string) Status {
	return Status{Severity: StatusWarn, Code: code, Message: message}
}

func Info(code, message string) Status {
	return Status{Severity: StatusInfo, Code: code, Message: message}
}

func SkipStatus(code, message string) Status {
	return Status{Severity: StatusSkip, Code: code, Message: message}
}

// Error reports an unexpected failure of the check itself.
func Error(message string) Status {
	return Status{Severity: StatusError, Message: message}
}

func JustOnePass() []Status { return []Status{Pass()} }

func JustOneFail(code, message string) []Status { return []Status{Fail(code, message)} }

func JustOneWarn(code, message string) []Status { return []Status{Warn(code, message)} }

func JustOneInfo(code, message string) []Status { return []Status{Info(code, message)} }

func JustOneSkip(code, message string) []Status { return []Status{SkipStatus(code, message)} }

// ReturnResult is the usual tail of a check: no problems means a single PASS.
func ReturnResult(problems []Status) ([]Status, error) {
	if len(problems) == 0 {
		return JustOnePass(), nil
	}
	return problems, nil
}

// SkipError is returned by a check that decides early it does not apply.
type SkipError struct {
	Code    string
	Message string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped [%s]: %s", e.Code, e.Message)
}

// Skip returns an error the engine turns into a single SKIP status.
func Skip(code, message string) error {
	return &SkipError{Code: code, Message: message}
}
