package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FlexInt decodes from a JSON number or a numeric string. Browser forms submit
// numbers as strings. Fractions are truncated toward zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if i, err := strconv.Atoi(raw); err == nil {
		*n = FlexInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("%s is not an integer", raw)
	}
	*n = FlexInt(math.Trunc(f))
	return nil
}

// MarshalJSON keeps FlexInt a plain number on the way out.
func (n FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(n))
}

func intPtr(n *FlexInt) *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

// validationFailed writes the 400 envelope for a failed validator check.
func validationFailed(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
