// Package validation checks request schemas at the HTTP boundary and reports
// failures as field errors.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// FieldError describes one rejected field.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
	Value string `json:"value,omitempty"`
}

// Errors is a list of field errors. A nil Errors means the input is valid.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Param+": "+fe.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field error.
func (e *Errors) Add(param, msg, value string) {
	*e = append(*e, FieldError{Param: param, Msg: msg, Value: value})
}

// Err returns nil when no field failed, so callers can write
// `if err := v.Err(); err != nil`.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

const (
	MinUsernameLength       = 2
	MinPasswordLength       = 16
	MinLoginPasswordLength  = 6
	MaxEmailLength          = 254
	MsgInvalidEmail         = "Please include a valid email"
	MsgUsernameLength       = "The username must be 2 chars"
	MsgPasswordRule         = "The password must be 16 chars long and contain a number"
	MsgPasswordCommon       = "Do not use a common word as the password"
	MsgLoginPasswordLength  = "The password must be 6 chars long"
	MsgStatusRequired       = "Status is required"
	MsgSkillsRequired       = "Skills is required"
	MsgTitleRequired        = "Title is required"
	MsgContentRequired      = "Content is required"
	MsgTextRequired         = "Text is required"
	MsgCompanyRequired      = "Company is required"
	MsgSchoolRequired       = "School is required"
	MsgDegreeRequired       = "Degree is required"
	MsgFieldOfStudyRequired = "Field of study is required"
	MsgFromRequired         = "From date is required"
	MsgDateInvalid          = "Date must be YYYY-MM-DD or RFC3339"
	MsgToBeforeFrom         = "To date must not be before from date"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	commonPasswords = map[string]struct{}{
		"123456":           {},
		"password":         {},
		"qwerty":           {},
		"1234567890123456": {},
		"password12345678": {},
		"qwerty1234567890": {},
	}
)

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return len(s) <= MaxEmailLength && emailRegex.MatchString(s)
}

// CheckEmail appends an error to errs when email is malformed.
func CheckEmail(errs *Errors, email string) {
	if !IsEmail(email) {
		errs.Add("email", MsgInvalidEmail, email)
	}
}

// CheckUsername enforces the trimmed minimum length.
func CheckUsername(errs *Errors, username string) {
	if len([]rune(strings.TrimSpace(username))) < MinUsernameLength {
		errs.Add("username", MsgUsernameLength, username)
	}
}

// CheckPassword applies the registration password rule: at least 16
// characters after trimming, one digit, not a common password.
func CheckPassword(errs *Errors, password string) {
	p := strings.TrimSpace(password)
	if len([]rune(p)) < MinPasswordLength || !containsDigit(p) {
		errs.Add("password", MsgPasswordRule, "")
	}
	if _, ok := commonPasswords[strings.ToLower(p)]; ok {
		errs.Add("password", MsgPasswordCommon, "")
	}
}

// CheckLoginPassword only enforces the short minimum used at login.
func CheckLoginPassword(errs *Errors, password string) {
	if len([]rune(password)) < MinLoginPasswordLength {
		errs.Add("password", MsgLoginPasswordLength, "")
	}
}

// Required adds msg for param when value is blank after trimming.
func Required(errs *Errors, param, value, msg string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(param, msg, value)
	}
}

// ParseSkills splits a comma separated list, trims each entry and drops
// empties. " Go, ,SQL,," becomes ["Go", "SQL"].
func ParseSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// ParseDate accepts a calendar date (2006-01-02) or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CheckDateRange validates the from/to pair of a profile entry and returns the
// parsed values. When current is true, to is ignored and returned as nil.
func CheckDateRange(errs *Errors, from, to string, current bool) (time.Time, *time.Time) {
	var fromT time.Time
	if strings.TrimSpace(from) == "" {
		errs.Add("from", MsgFromRequired, from)
	} else if t, err := ParseDate(from); err != nil {
		errs.Add("from", MsgDateInvalid, from)
	} else {
		fromT = t
	}

	if current || strings.TrimSpace(to) == "" {
		return fromT, nil
	}

	toT, err := ParseDate(to)
	if err != nil {
		errs.Add("to", MsgDateInvalid, to)
		return fromT, nil
	}
	if !fromT.IsZero() && toT.Before(fromT) {
		errs.Add("to", MsgToBeforeFrom, to)
	}
	return fromT, &toT
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
