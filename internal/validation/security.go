package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/logger"
)

// Error is a field-level validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(field, format string, args ...interface{}) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a *validation.Error from err.
func AsError(err error) (*Error, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

var fieldValidator = validator.New()

var (
	xssPatterns = compileAll(
		`(?i)<script[^>]*>.*?</script>`,
		`(?i)javascript:`,
		`(?i)on\w+\s*=`,
		`(?i)<iframe[^>]*>`,
		`(?i)<object[^>]*>`,
		`(?i)<embed[^>]*>`,
	)

	sqlInjectionPatterns = compileAll(
		`(?i)\b(union|select|insert|update|delete|drop|create|alter)\b`,
		`(?i)\b(or|and)\b\s+\d+\s*[=<>]`,
		`(?i)\b(exec|execute|xp_|sp_)\b`,
	)

	pathTraversalPatterns = compileAll(
		`\.\./`,
		`\.\.\\`,
		`(?i)%2e%2e%2f`,
		`(?i)%2e%2e%5c`,
	)

	htmlTag         = regexp.MustCompile(`<[^>]*>`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	suspiciousName  = regexp.MustCompile(`(?i)(admin|root|system)`)

	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	sequential     = regexp.MustCompile(`(123|abc|qwe)`)
)

var reservedUsernames = map[string]bool{
	"admin": true, "root": true, "system": true, "test": true,
	"demo": true, "guest": true, "anonymous": true,
}

var commonPasswords = map[string]bool{
	"password": true, "123456": true, "admin": true, "qwerty": true, "letmein": true,
	"welcome": true, "monkey": true, "dragon": true, "master": true, "football": true,
}

var dangerousExtensions = []string{".exe", ".bat", ".cmd", ".com", ".pif", ".scr", ".vbs", ".js"}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, value string) bool {
	for _, p := range patterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

func preview(value string) string {
	if utf8.RuneCountInString(value) <= 100 {
		return value
	}
	return string([]rune(value)[:100])
}

// ValidateText trims value, enforces maxLength and rejects script injection
// and SQL keywords. Use it for short single-line fields such as titles.
func ValidateText(value, field string, maxLength int) (string, error) {
	return validateText(value, field, maxLength, true)
}

// ValidateBody is ValidateText without the SQL keyword check, for free prose
// such as post and comment bodies.
func ValidateBody(value, field string, maxLength int) (string, error) {
	return validateText(value, field, maxLength, false)
}

func validateText(value, field string, maxLength int, checkSQL bool) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return value, nil
	}

	if utf8.RuneCountInString(value) > maxLength {
		return "", newError(field, "%s is too long (max %d characters)", field, maxLength)
	}

	if matchAny(xssPatterns, value) {
		logger.Log.Warn("Potential XSS attack detected", zap.String("field", field), zap.String("value", preview(value)))
		return "", newError(field, "%s contains invalid content", field)
	}

	if checkSQL && matchAny(sqlInjectionPatterns, value) {
		logger.Log.Warn("Potential SQL injection detected", zap.String("field", field), zap.String("value", preview(value)))
		return "", newError(field, "%s contains invalid content", field)
	}

	if cleaned := StripTags(value); cleaned != value {
		logger.Log.Info("HTML tags stripped", zap.String("field", field))
		value = strings.TrimSpace(cleaned)
	}
	return value, nil
}

// StripTags removes anything that looks like an HTML tag.
func StripTags(value string) string {
	return htmlTag.ReplaceAllString(value, "")
}

// SanitizeHTML removes script-capable markup and keeps other tags.
func SanitizeHTML(value string) string {
	for _, p := range xssPatterns {
		value = p.ReplaceAllString(value, "")
	}
	return value
}

// HasPathTraversal reports whether value tries to escape a directory.
func HasPathTraversal(value string) bool {
	return matchAny(pathTraversalPatterns, value)
}

// ValidateUsername normalizes and checks a new username.
func ValidateUsername(username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", newError("username", "Username is required")
	}
	username = strings.ToLower(strings.TrimSpace(username))

	switch n := utf8.RuneCountInString(username); {
	case n < 3:
		return "", newError("username", "Username must be at least 3 characters long")
	case n > 30:
		return "", newError("username", "Username must be no more than 30 characters long")
	}

	if !usernamePattern.MatchString(username) {
		return "", newError("username", "Username can only contain lowercase letters, numbers, and underscores")
	}
	if reservedUsernames[username] {
		return "", newError("username", "This username is not allowed")
	}
	if suspiciousName.MatchString(username) {
		logger.Log.Warn("Suspicious username pattern detected", zap.String("username", username))
	}
	return username, nil
}

// ValidatePassword enforces the password policy. field names the request
// field the error is reported against.
func ValidatePassword(password, field string) error {
	if password == "" {
		return newError(field, "Password is required")
	}

	switch n := utf8.RuneCountInString(password); {
	case n < 8:
		return newError(field, "Password must be at least 8 characters long")
	case n > 128:
		return newError(field, "Password must be no more than 128 characters long")
	}

	switch {
	case !upperPattern.MatchString(password):
		return newError(field, "Password must contain at least one uppercase letter")
	case !lowerPattern.MatchString(password):
		return newError(field, "Password must contain at least one lowercase letter")
	case !digitPattern.MatchString(password):
		return newError(field, "Password must contain at least one number")
	case !specialPattern.MatchString(password):
		return newError(field, "Password must contain at least one special character")
	}

	lowered := strings.ToLower(password)
	if commonPasswords[lowered] {
		return newError(field, "This password is too common")
	}
	if sequential.MatchString(lowered) {
		return newError(field, "Password contains sequential patterns")
	}
	return nil
}

// ValidateEmail normalizes and checks an email address outside request
// binding, for callers such as the auth service and management commands.
func ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", newError("email", "Email is required")
	}
	if len(email) > 254 {
		return "", newError("email", "Email address is too long")
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		return "", newError("email", "Enter a valid email address")
	}
	return email, nil
}

// Upload describes a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
}

// ValidateUpload checks size, content type and extension. An empty
// allowedTypes accepts any content type.
func ValidateUpload(file Upload, allowedTypes []string, maxSize int64) error {
	if file.Filename == "" {
		return newError("image", "File is required")
	}
	if file.Size > maxSize {
		return newError("image", "File size must be no more than %dMB", maxSize/(1024*1024))
	}

	if len(allowedTypes) > 0 {
		allowed := false
		for _, t := range allowedTypes {
			if strings.EqualFold(t, file.ContentType) {
				allowed = true
				break
			}
		}
		if !allowed {
			return newError("image", "File type not allowed. Allowed types: %s", strings.Join(allowedTypes, ", "))
		}
	}

	name := strings.ToLower(file.Filename)
	for _, ext := range dangerousExtensions {
		if strings.HasSuffix(name, ext) {
			return newError("image", "This file type is not allowed for security reasons")
		}
	}
	if HasPathTraversal(file.Filename) || filepath.Base(file.Filename) != file.Filename {
		return newError("image", "Invalid file name")
	}
	return nil
}
