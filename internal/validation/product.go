package validation

import (
	"fmt"
	"reflect"
	"strings"

	"productapi/internal/models"

	"github.com/go-playground/validator/v10"
)

// FieldError is a validation failure tied to a single payload field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects every field failure found in one payload.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields returns the names of the failing fields in report order.
func (e Errors) Fields() []string {
	names := make([]string, len(e))
	for i, fe := range e {
		names[i] = fe.Field
	}
	return names
}

// productCandidate is the typed shape handed to the validator once
// JSON type checks have passed.
type productCandidate struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required,oneof=men women electronics jewelry"`
	ImageURL    string  `json:"imageUrl" validate:"required,url"`
	Price       float64 `json:"price" validate:"gte=1"`
	Creator     string  `json:"creator" validate:"required"`
}

var fieldOrder = []string{"title", "description", "category", "imageUrl", "price", "creator"}

var categoryList = joinCategories(models.Categories)

func joinCategories(categories []models.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so errors match what the caller sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateProduct checks a decoded JSON object against the product shape.
// All failing fields are reported, one FieldError per field. No type
// coercion happens: a price sent as a string is rejected.
func ValidateProduct(payload map[string]interface{}) (models.ProductInput, error) {
	var c productCandidate
	found := make(map[string]FieldError)

	stringFields := []struct {
		name string
		dst  *string
	}{
		{"title", &c.Title},
		{"description", &c.Description},
		{"category", &c.Category},
		{"imageUrl", &c.ImageURL},
		{"creator", &c.Creator},
	}
	for _, f := range stringFields {
		raw, ok := payload[f.name]
		if !ok || raw == nil {
			found[f.name] = FieldError{Field: f.name, Message: f.name + " is required"}
			continue
		}
		s, ok := raw.(string)
		if !ok {
			found[f.name] = FieldError{Field: f.name, Message: f.name + " must be a string"}
			continue
		}
		*f.dst = s
	}

	switch raw := payload["price"].(type) {
	case nil:
		found["price"] = FieldError{Field: "price", Message: "price is required"}
	case float64:
		c.Price = raw
	default:
		found["price"] = FieldError{Field: "price", Message: "price must be a number"}
	}

	if err := validate.Struct(c); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return models.ProductInput{}, fmt.Errorf("failed to validate product: %w", err)
		}
		for _, e := range validationErrors {
			if _, seen := found[e.Field()]; seen {
				continue
			}
			found[e.Field()] = FieldError{Field: e.Field(), Message: messageFor(e)}
		}
	}

	if len(found) > 0 {
		errs := make(Errors, 0, len(found))
		for _, name := range fieldOrder {
			if fe, ok := found[name]; ok {
				errs = append(errs, fe)
			}
		}
		return models.ProductInput{}, errs
	}

	return models.ProductInput{
		Title:       c.Title,
		Description: c.Description,
		Category:    models.Category(c.Category),
		ImageURL:    c.ImageURL,
		Price:       c.Price,
		Creator:     c.Creator,
	}, nil
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), categoryList)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}
