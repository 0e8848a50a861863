package media

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Code classifies why an upload was rejected.
type Code string

const (
	CodeInvalidType      Code = "INVALID_TYPE"
	CodeFileTooLarge     Code = "FILE_TOO_LARGE"
	CodeResolutionTooLow Code = "RESOLUTION_TOO_LOW"
	CodeLoadError        Code = "LOAD_ERROR"
)

// ValidationError reports a rejected upload. Rejections are recoverable and
// never mutate existing sequence or slot state; they happen before a clip is
// ever created.
type ValidationError struct {
	Code   Code
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Limits bounds what uploads are accepted.
type Limits struct {
	MaxBytes  int64
	MinWidth  int
	MinHeight int
	Formats   []string // accepted ffprobe format names, e.g. "mp4", "webm"
}

// Validate checks an upload candidate against the limits. A nil return means
// the file is acceptable as clip material; otherwise the error is a
// *ValidationError carrying the rejection code.
func Validate(ctx context.Context, runner Runner, path string, limits Limits) error {
	fi, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Code: CodeLoadError, Detail: fmt.Sprintf("stat %s: %v", path, err)}
	}
	if !fi.Mode().IsRegular() {
		return &ValidationError{Code: CodeLoadError, Detail: fmt.Sprintf("%s is not a regular file", path)}
	}
	if limits.MaxBytes > 0 && fi.Size() > limits.MaxBytes {
		return &ValidationError{
			Code:   CodeFileTooLarge,
			Detail: fmt.Sprintf("%d bytes exceeds limit of %d", fi.Size(), limits.MaxBytes),
		}
	}

	info, err := Probe(ctx, runner, path)
	if err != nil {
		return &ValidationError{Code: CodeLoadError, Detail: err.Error()}
	}
	if !info.HasVideo {
		return &ValidationError{Code: CodeInvalidType, Detail: "no video stream"}
	}
	if len(limits.Formats) > 0 && !formatAccepted(info.FormatName, limits.Formats) {
		return &ValidationError{
			Code:   CodeInvalidType,
			Detail: fmt.Sprintf("format %q not in %v", info.FormatName, limits.Formats),
		}
	}
	if info.Width < limits.MinWidth || info.Height < limits.MinHeight {
		return &ValidationError{
			Code:   CodeResolutionTooLow,
			Detail: fmt.Sprintf("%dx%d below minimum %dx%d", info.Width, info.Height, limits.MinWidth, limits.MinHeight),
		}
	}
	return nil
}

// formatAccepted matches against ffprobe's comma-separated format_name list
// (e.g. "mov,mp4,m4a,3gp,3g2,mj2").
func formatAccepted(formatName string, accepted []string) bool {
	for _, part := range strings.Split(formatName, ",") {
		for _, want := range accepted {
			if strings.EqualFold(strings.TrimSpace(part), want) {
				return true
			}
		}
	}
	return false
}
