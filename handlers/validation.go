// handlers/validation.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// FieldError is one entry of the "details" array of a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// numeric rules (gte, lte) compare decimals as float64
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterStructValidation(connectWalletStructLevel, connectWalletRequest{})
	v.RegisterStructValidation(createOfferStructLevel, createOfferRequest{})
	return v
}

func connectWalletStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(connectWalletRequest)
	if req.AvailableCapitalMax.LessThan(req.AvailableCapitalMin) {
		sl.ReportError(req.AvailableCapitalMax, "availableCapitalMax", "AvailableCapitalMax", "gtefield", "availableCapitalMin")
	}
}

func createOfferStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(createOfferRequest)
	if strings.TrimSpace(req.TargetWalletID) == "" && strings.TrimSpace(req.TargetAddress) == "" {
		sl.ReportError(req.TargetAddress, "targetAddress", "TargetAddress", "required_without", "targetWalletId")
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is empty", fe.Param())
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gtefield":
		return "must not be less than " + fe.Param()
	case "hexadecimal", "startswith":
		return "must be a 0x-prefixed hex address"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// fieldPath drops the root struct name and embedded struct names from the
// namespace, keeping nested json names such as "preferences.region".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) < 2 {
		return fe.Field()
	}
	out := parts[1:][:0]
	for _, p := range parts[1:] {
		if p == embeddedBalances {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

// invalidFields decodes each member of a JSON object on its own and reports
// the ones whose value does not fit the field type. Embedded structs share the
// object of their parent.
func invalidFields(raw []byte, t reflect.Type, prefix string) []FieldError {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return nil
	}

	var out []FieldError
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			out = append(out, invalidFields(raw, f.Type, prefix)...)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		val, ok := obj[name]
		if !ok || json.Unmarshal(val, reflect.New(f.Type).Interface()) == nil {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			if nested := invalidFields(val, f.Type, prefix+name+"."); len(nested) > 0 {
				out = append(out, nested...)
				continue
			}
		}
		out = append(out, FieldError{
			Field:   prefix + name,
			Rule:    "type",
			Message: "has an invalid value",
		})
	}
	return out
}

// parseAndValidate decodes the JSON body into req and validates it. On failure
// the 400 response has already been written and handled is true.
func parseAndValidate(c *fiber.Ctx, req interface{}) (handled bool, err error) {
	if err := c.BodyParser(req); err != nil {
		if details := invalidFields(c.Body(), reflect.TypeOf(req).Elem(), ""); len(details) > 0 {
			return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "validation failed",
				"details": details,
			})
		}
		return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field:   fieldPath(fe),
				Rule:    fe.Tag(),
				Message: fieldMessage(fe),
			})
		}
		return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation failed",
			"details": details,
		})
	}
	return false, nil
}
