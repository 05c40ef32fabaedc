package jobs

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jackzampolin/lectern/internal/types"
)

// Default class-level bounds; overridable through ValidatorConfig.
const (
	DefaultMinClassLevel = 9
	DefaultMaxClassLevel = 12
)

// ValidatorConfig bounds the accepted class-level range.
type ValidatorConfig struct {
	MinClassLevel int
	MaxClassLevel int
}

// RequestValidator rejects malformed requests before a job is created.
// Every violation is reported, not just the first.
type RequestValidator struct {
	validate *validator.Validate
	minClass int
	maxClass int
}

// NewRequestValidator creates a validator with the configured bounds.
func NewRequestValidator(cfg ValidatorConfig) *RequestValidator {
	if cfg.MinClassLevel == 0 {
		cfg.MinClassLevel = DefaultMinClassLevel
	}
	if cfg.MaxClassLevel == 0 {
		cfg.MaxClassLevel = DefaultMaxClassLevel
	}
	return &RequestValidator{
		validate: validator.New(),
		minClass: cfg.MinClassLevel,
		maxClass: cfg.MaxClassLevel,
	}
}

// Validate returns a JobError of kind validation_error listing every
// violation, or nil when the request is acceptable.
func (v *RequestValidator) Validate(req types.Request) *JobError {
	var violations []string

	if err := v.validate.Var(strings.TrimSpace(req.Board), "required"); err != nil {
		violations = append(violations, "board is required")
	}
	if err := v.validate.Var(strings.TrimSpace(req.Subject), "required"); err != nil {
		violations = append(violations, "subject is required")
	}
	if err := v.validate.Var(strings.TrimSpace(req.ChapterName), "required"); err != nil {
		violations = append(violations, "chapter_name is required")
	}

	rangeTag := fmt.Sprintf("gte=%d,lte=%d", v.minClass, v.maxClass)
	if err := v.validate.Var(req.ClassLevel, rangeTag); err != nil {
		violations = append(violations,
			fmt.Sprintf("class_level must be between %d and %d, got %d", v.minClass, v.maxClass, req.ClassLevel))
	}

	if len(violations) == 0 {
		return nil
	}
	return &JobError{
		Kind:    ErrKindValidation,
		Message: strings.Join(violations, "; "),
	}
}
