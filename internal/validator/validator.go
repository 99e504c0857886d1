package validator

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/go-playground/validator/v10"
)

var ErrEmptyCatalog = errors.New("endpoint catalog is empty")

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterValidation("http_protocol", validateHTTPProtocol) //nolint:errcheck
	return &Validator{
		validate: v,
	}
}

func validateHTTPProtocol(fl validator.FieldLevel) bool {
	urlStr := fl.Field().String()
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	return parsedURL.Scheme == "http" || parsedURL.Scheme == "https"
}

func (v *Validator) ValidateURL(url string) error {
	type urlStruct struct {
		URL string `validate:"required,url,http_protocol"`
	}

	return v.validate.Struct(urlStruct{URL: url})
}

// Struct validates any value carrying `validate` tags.
func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}

func (v *Validator) ValidateEndpoints(endpoints []schema.Endpoint) ValidationResults {
	results := make([]ValidationResult, len(endpoints))

	for i, endpoint := range endpoints {
		results[i] = ValidationResult{
			Name:  endpoint.Name,
			Index: i + 1,
			Error: v.validate.Struct(endpoint),
		}
	}

	return results
}

// InvalidFields lists the struct field names rejected by a validation error.
func InvalidFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.StructField())
	}
	return fields
}

type ValidationResult struct {
	Name  string
	Index int
	Error error
}

func (r ValidationResult) IsValid() bool {
	return r.Error == nil
}

type ValidationResults []ValidationResult

func (vr ValidationResults) GetInvalidEndpoints() []string {
	invalid := make([]string, 0)
	for _, result := range vr {
		if !result.IsValid() {
			invalid = append(invalid, fmt.Sprintf("#%d %q", result.Index, result.Name))
		}
	}
	return invalid
}

// Err folds the results into a single error, nil when the catalog is usable.
func (vr ValidationResults) Err() error {
	if len(vr) == 0 {
		return ErrEmptyCatalog
	}
	if !HasInvalidEndpoints(vr) {
		return nil
	}
	return fmt.Errorf("invalid endpoints: %s", strings.Join(vr.GetInvalidEndpoints(), ", "))
}

func HasInvalidEndpoints(results ValidationResults) bool {
	for _, result := range results {
		if !result.IsValid() {
			return true
		}
	}
	return false
}
