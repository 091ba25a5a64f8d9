package checkout

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/DungK5UIT/Beauty-Store/internal/domain"
)

// Vietnamese mobile numbers: optional +84 or leading 0, then a carrier
// prefix (3, 5, 7, 8, 9) and eight digits.
var vnMobile = regexp.MustCompile(`^(\+84|0)[35789][0-9]{8}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// registration cannot fail for a non-empty tag on a func
	_ = v.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
		return vnMobile.MatchString(fl.Field().String())
	})
	return v
}

// shippingMessage maps a failed field to its localized message, keyed by
// which rule broke.
func shippingMessage(fe validator.FieldError) *ValidationError {
	switch fe.StructField() {
	case "FullName":
		return &ValidationError{Field: "full_name", Message: msgMissingFullName}
	case "Phone":
		if fe.Tag() == "required" {
			return &ValidationError{Field: "phone", Message: msgMissingPhone}
		}
		return &ValidationError{Field: "phone", Message: msgInvalidPhone}
	case "Email":
		return &ValidationError{Field: "email", Message: msgInvalidEmail}
	case "Address":
		return &ValidationError{Field: "address", Message: msgMissingAddress}
	case "City":
		return &ValidationError{Field: "city", Message: msgMissingCity}
	case "District":
		return &ValidationError{Field: "district", Message: msgMissingDistrict}
	}
	return &ValidationError{Field: fe.Field(), Message: msgSubmitFailed}
}

// validateShipping returns the first broken rule, in declaration order,
// so the user is corrected one field at a time.
func (o *Orchestrator) validateShipping(info domain.ShippingInfo) error {
	err := o.validate.Struct(info)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return shippingMessage(errs[0])
	}
	return err
}
