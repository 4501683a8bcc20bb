package menu

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError lists every problem found in a menu item.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid menu item: " + strings.Join(e.Problems, "; ")
}

var hundred = decimal.NewFromInt(100)

// Validate checks the fields required for an item to be listed and priced.
func Validate(item Item) error {
	var problems []string
	if strings.TrimSpace(item.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !item.Price.IsPositive() {
		problems = append(problems, "price must be greater than 0")
	}
	if strings.TrimSpace(item.Category) == "" {
		problems = append(problems, "category is required")
	}
	if !item.Type.Valid() {
		problems = append(problems, `type must be "Veg" or "Non Veg"`)
	}
	if item.Discount.Valid && (item.Discount.Decimal.IsNegative() || item.Discount.Decimal.GreaterThan(hundred)) {
		problems = append(problems, "discount must be between 0 and 100")
	}
	if item.PreparationTime < 0 {
		problems = append(problems, "preparation time must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
