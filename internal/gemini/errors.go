package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"
)

// ErrorClass partitions model-call failures for the chat response's
// error_type field. Classification is by cause, not message text shown to the
// user.
type ErrorClass string

const (
	// ClassQuota marks provider quota or rate-limit rejections. These are
	// surfaced immediately and never retried.
	ClassQuota ErrorClass = "quota"
	// ClassNetwork marks transport-level failures reaching the provider.
	// A single retry with backoff is worthwhile.
	ClassNetwork ErrorClass = "network"
	// ClassLLM marks every other model-call failure.
	ClassLLM ErrorClass = "llm"
)

// IncompleteError reports that the model answered but the extracted entity
// lacks a required field or holds an invalid value. It is not a model
// failure: the caller asks the user for the missing piece.
type IncompleteError struct {
	Reason string
}

func (e *IncompleteError) Error() string {
	return "incomplete extraction: " + e.Reason
}

func incomplete(format string, args ...any) *IncompleteError {
	return &IncompleteError{Reason: fmt.Sprintf(format, args...)}
}

// Incomplete reports whether err marks an incomplete extraction.
func Incomplete(err error) bool {
	var inc *IncompleteError
	return errors.As(err, &inc)
}

// quotaKeywords match the provider's quota/rate-limit error surface on
// untyped errors.
var quotaKeywords = []string{
	"429",
	"quota",
	"resource exhausted",
	"resource_exhausted",
	"rate limit",
	"rate_limit",
}

// ClassifyError maps a failed model call to its error class. Typed causes
// win: the provider's APIError status code, then transport errors; keyword
// matching is the fallback for untyped errors only.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassLLM
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return ClassQuota
		case apiErr.Code >= 500:
			return ClassNetwork
		}
		return ClassLLM
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range quotaKeywords {
		if strings.Contains(msg, kw) {
			return ClassQuota
		}
	}
	return ClassLLM
}

// Retryable reports whether the failure is worth one more attempt.
func Retryable(err error) bool {
	return ClassifyError(err) == ClassNetwork
}
