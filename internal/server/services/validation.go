package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/go-playground/validator/v10"
)

var scopeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("scopeid", func(fl validator.FieldLevel) bool {
		return scopeIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// validationError folds validator output into a common.ErrorValidation
// that names the failing fields.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: invalid %s", common.ErrorValidation, strings.Join(fields, ", "))
}

func validateScopeID(id string) error {
	if err := validate.Var(id, "scopeid"); err != nil {
		return fmt.Errorf("%w: invalid scope id %q", common.ErrorValidation, id)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
