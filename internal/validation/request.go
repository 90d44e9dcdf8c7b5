package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	"lfsclean/internal/errors"
	"lfsclean/pkg/contracts/domain"
)

// Query parameter names accepted by the clean endpoints
const (
	ParamUnemployedOnly = "unemployed_only"
	ParamClassification = "classification"
	ParamFormat         = "format"
	ParamSheet          = "sheet"
)

var validate = validator.New()

// CleanParams are the validated options of one clean request
type CleanParams struct {
	Options domain.CleaningOptions
	Format  string `validate:"oneof=csv xlsx json"`
	// Sheet selects the worksheet of an uploaded workbook; Excel caps names at 31 characters
	Sheet string `validate:"omitempty,max=31"`
}

// ParseCleanParams reads the clean options from query values, falling back
// to defaults and defaultFormat for absent parameters.
func ParseCleanParams(q url.Values, defaults domain.CleaningOptions, defaultFormat string) (CleanParams, error) {
	params := CleanParams{
		Options: defaults,
		Format:  strings.ToLower(strings.TrimSpace(q.Get(ParamFormat))),
		Sheet:   strings.TrimSpace(q.Get(ParamSheet)),
	}
	if params.Format == "" {
		params.Format = defaultFormat
	}

	var problems []errors.ValidationError

	if raw := q.Get(ParamUnemployedOnly); raw != "" {
		b, err := cast.ToBoolE(raw)
		if err != nil {
			problems = append(problems, errors.ValidationError{Field: ParamUnemployedOnly, Message: "must be a boolean"})
		}
		params.Options.UnemployedOnly = b
	}
	if raw := q.Get(ParamClassification); raw != "" {
		b, err := cast.ToBoolE(raw)
		if err != nil {
			problems = append(problems, errors.ValidationError{Field: ParamClassification, Message: "must be a boolean"})
		}
		params.Options.ClassificationMode = b
	}

	if err := validate.Struct(params); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, errors.ValidationError{
					Field:   strings.ToLower(fe.Field()),
					Message: fmt.Sprintf("failed %s validation", fe.Tag()),
				})
			}
		} else {
			return CleanParams{}, err
		}
	}

	if len(problems) > 0 {
		return CleanParams{}, errors.NewValidationErrors(problems)
	}
	return params, nil
}
