package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level validator, initialised once at load time.
// Custom type registrations must happen in init() before the first
// Struct call.
var v = validator.New()

// Struct validates s against its `validate` tags and flattens any
// violations into a single readable error.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation: %s", strings.Join(msgs, ", "))
}
