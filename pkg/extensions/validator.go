package extensions

import (
	"fmt"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validating extension fields
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidateFields checks a field map against the definition's schema. Unknown
// fields and type mismatches are reported; nil values are always allowed.
func ValidateFields(definitionID int, fields map[string]any) (ValidationResult, error) {
	def, err := DefinitionByID(definitionID)
	if err != nil {
		return ValidationResult{}, err
	}

	result := ValidationResult{Valid: true, Errors: []ValidationError{}}

	if !def.HasFields() && len(fields) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "",
			Message: fmt.Sprintf("extension %s does not carry fields", def.Name),
		})
		return result, nil
	}

	schema := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		schema[f.Name] = f.Type
	}

	for name, value := range fields {
		fieldType, known := schema[name]
		if !known {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   name,
				Message: "unknown field",
			})
			continue
		}

		if value == nil {
			continue
		}

		if !isValidType(value, fieldType) {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("expected type %s, got %T", fieldType, value),
			})
		}
	}

	return result, nil
}

func isValidType(value any, fieldType string) bool {
	switch fieldType {
	case FieldString:
		_, ok := value.(string)
		return ok
	case FieldBoolean:
		_, ok := value.(bool)
		return ok
	case FieldInteger:
		// json decoding produces float64 for all numbers
		switch n := value.(type) {
		case int, int64:
			return true
		case float64:
			return n == float64(int64(n))
		default:
			return false
		}
	case FieldFloat:
		switch value.(type) {
		case float64, int, int64:
			return true
		default:
			return false
		}
	default:
		return false
	}
}
