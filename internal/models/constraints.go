package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
)

var (
	decimalPlaces  = regexp.MustCompile(`^0\.0*1$`)
	wildcardStatus = regexp.MustCompile(`^[1-5][xX][xX]$`)
	numericStatus  = regexp.MustCompile(`^\d{3}$`)
)

// HumanizeConstraints describes the validation keywords of a schema.
func HumanizeConstraints(schema *base.Schema) []string {
	if schema == nil {
		return nil
	}

	var res []string
	if r := humanizeRange("characters", schema.MinLength, schema.MaxLength); r != "" {
		res = append(res, r)
	}
	if r := humanizeRange("items", schema.MinItems, schema.MaxItems); r != "" {
		res = append(res, r)
	}
	if r := humanizeRange("properties", schema.MinProperties, schema.MaxProperties); r != "" {
		res = append(res, r)
	}
	if schema.MultipleOf != nil {
		res = append(res, humanizeMultipleOf(*schema.MultipleOf))
	}
	if r := humanizeNumberRange(schema); r != "" {
		res = append(res, r)
	}
	if flag(schema.UniqueItems) {
		res = append(res, "unique")
	}
	return res
}

// HumanizeItemsRange describes only the array length bounds.
func HumanizeItemsRange(min, max *int64) string {
	return humanizeRange("items", min, max)
}

func humanizeRange(description string, min, max *int64) string {
	switch {
	case min != nil && max != nil:
		if *min == *max {
			return fmt.Sprintf("= %d %s", *min, description)
		}
		return fmt.Sprintf("[ %d .. %d ] %s", *min, *max, description)
	case max != nil:
		return fmt.Sprintf("<= %d %s", *max, description)
	case min != nil:
		if *min == 1 {
			return "non-empty"
		}
		return fmt.Sprintf(">= %d %s", *min, description)
	}
	return ""
}

func humanizeMultipleOf(multipleOf float64) string {
	s := formatNumber(multipleOf)
	if !decimalPlaces.MatchString(s) {
		return "multiple of " + s
	}
	return fmt.Sprintf("decimal places <= %d", len(strings.SplitN(s, ".", 2)[1]))
}

func humanizeNumberRange(schema *base.Schema) string {
	minimum, maximum := schema.Minimum, schema.Maximum
	exclusiveMin, exclusiveMax := false, false

	if em := schema.ExclusiveMinimum; em != nil {
		if em.IsB() {
			v := em.B
			if minimum != nil {
				v = math.Min(v, *minimum)
			}
			minimum = &v
			exclusiveMin = true
		} else {
			exclusiveMin = em.A
		}
	}
	if em := schema.ExclusiveMaximum; em != nil {
		if em.IsB() {
			v := em.B
			if maximum != nil {
				v = math.Max(v, *maximum)
			}
			maximum = &v
			exclusiveMax = true
		} else {
			exclusiveMax = em.A
		}
	}

	switch {
	case minimum != nil && maximum != nil:
		open, closing := "[ ", " ]"
		if exclusiveMin {
			open = "( "
		}
		if exclusiveMax {
			closing = " )"
		}
		return open + formatNumber(*minimum) + " .. " + formatNumber(*maximum) + closing
	case maximum != nil:
		if exclusiveMax {
			return "< " + formatNumber(*maximum)
		}
		return "<= " + formatNumber(*maximum)
	case minimum != nil:
		if exclusiveMin {
			return "> " + formatNumber(*minimum)
		}
		return ">= " + formatNumber(*minimum)
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsStatusCode reports whether a responses key is a status code, a status
// code range such as 4XX, or default.
func IsStatusCode(code string) bool {
	if code == "default" || wildcardStatus.MatchString(code) {
		return true
	}
	if !numericStatus.MatchString(code) {
		return false
	}
	n, _ := strconv.Atoi(code)
	return n >= 100 && n <= 599
}

// StatusCodeType classifies a response code as info, success, redirect or
// error. default counts as an error when defaultAsError is set. Codes that
// are not status codes yield an empty string.
func StatusCodeType(code string, defaultAsError bool) string {
	if code == "default" {
		if defaultAsError {
			return "error"
		}
		return "success"
	}
	if !IsStatusCode(code) {
		return ""
	}

	var n int
	if wildcardStatus.MatchString(code) {
		n = int(code[0]-'0') * 100
	} else {
		n, _ = strconv.Atoi(code)
	}

	switch {
	case n >= 300 && n < 400:
		return "redirect"
	case n >= 400:
		return "error"
	case n < 200:
		return "info"
	}
	return "success"
}

// flag reads boolean keywords that libopenapi exposes either as bool or as
// *bool.
func flag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case *bool:
		return b != nil && *b
	}
	return false
}
