package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// ValidateStrict runs all strict validations against the config and returns
// structured results.
func (c Config) ValidateStrict(projectRoot string) []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateFixed(projectRoot)...)
	results = append(results, c.validateSlots()...)
	results = append(results, c.validateEncoding()...)
	results = append(results, c.validateLimits()...)
	return results
}

func (c Config) validateFixed(projectRoot string) []ValidationResult {
	var results []ValidationResult
	if len(c.Fixed) == 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "no fixed clips configured",
		})
		return results
	}
	for i, clip := range c.Fixed {
		if clip.Path == "" {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("fixed clip %d has no path", i+1),
			})
			continue
		}
		resolved := clip.Path
		if !filepath.IsAbs(resolved) {
			inClips := filepath.Join(projectRoot, "clips", clip.Path)
			if _, err := os.Stat(inClips); err == nil {
				continue
			}
			resolved = filepath.Join(projectRoot, clip.Path)
		}
		if _, err := os.Stat(resolved); err != nil {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("fixed clip %q not found", clip.Path),
			})
		}
	}
	return results
}

func (c Config) validateSlots() []ValidationResult {
	var results []ValidationResult
	seen := make(map[int]bool, len(c.Slots))
	for i, slot := range c.Slots {
		if slot.Anchor < 1 || slot.Anchor > len(c.Fixed) {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("slot %d anchor %d outside fixed sequence (1..%d)", i+1, slot.Anchor, len(c.Fixed)),
			})
		}
		if seen[slot.Anchor] {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("duplicate slot anchor %d", slot.Anchor),
			})
		}
		seen[slot.Anchor] = true
	}
	return results
}

func (c Config) validateEncoding() []ValidationResult {
	var results []ValidationResult
	if c.Encoding.CRF < 0 || c.Encoding.CRF > 51 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("encoding crf %d outside 0..51", c.Encoding.CRF),
		})
	}
	if c.Encoding.FPS < 1 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("encoding fps %d must be positive", c.Encoding.FPS),
		})
	}
	return results
}

func (c Config) validateLimits() []ValidationResult {
	var results []ValidationResult
	if c.Limits.MaxUploadMB < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "limits max_upload_mb must not be negative",
		})
	}
	if c.Limits.MinWidth < 0 || c.Limits.MinHeight < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "limits min_width/min_height must not be negative",
		})
	}
	return results
}

// HasErrors reports whether any result is error-level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}
