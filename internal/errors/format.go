package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, includes additional technical details.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	me, ok := err.(*MemoryError)
	if !ok {
		// Standard error - just return message
		return err.Error()
	}

	var sb strings.Builder

	// Main error message
	sb.WriteString("Error: ")
	sb.WriteString(me.Message)
	sb.WriteString("\n")

	// Suggestion if available
	if me.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(me.Suggestion)
		sb.WriteString("\n")
	}

	// Error code for reference
	sb.WriteString(fmt.Sprintf("\n[%s]", me.Code))

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	me, ok := err.(*MemoryError)
	if !ok {
		// Wrap standard error
		me = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	// Error message with code
	sb.WriteString(fmt.Sprintf("Error: %s\n", me.Message))

	// Suggestion if available
	if me.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", me.Suggestion))
	}

	// Code reference
	sb.WriteString(fmt.Sprintf("  Code: %s\n", me.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Kind       string            `json:"kind"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
// Suitable for machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	me, ok := err.(*MemoryError)
	if !ok {
		// Wrap standard error
		me = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       me.Code,
		Message:    me.Message,
		Kind:       string(me.Kind),
		Severity:   string(me.Severity),
		Details:    me.Details,
		Suggestion: me.Suggestion,
		Retryable:  me.Retryable,
	}

	if me.Cause != nil {
		je.Cause = me.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	me, ok := err.(*MemoryError)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": me.Code,
		"message":    me.Message,
		"kind":       string(me.Kind),
		"severity":   string(me.Severity),
		"retryable":  me.Retryable,
	}

	if me.Cause != nil {
		result["cause"] = me.Cause.Error()
	}

	if me.Suggestion != "" {
		result["suggestion"] = me.Suggestion
	}

	for k, v := range me.Details {
		result["detail_"+k] = v
	}

	return result
}
