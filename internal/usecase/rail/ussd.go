// usecase/rail/ussd.go
package rail

import (
	"errors"
	"strconv"
	"strings"
)

const amountPlaceholder = "{amount}"

var ErrDialTemplateEmpty = errors.New("dial template is empty")

// FormatUSSD substitutes the amount into a stored dial template and
// guarantees the result starts with '*' and ends with '#' before it is ever
// handed to a dialer.
func FormatUSSD(template string, amount float64) (string, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return "", ErrDialTemplateEmpty
	}

	code := strings.ReplaceAll(template, amountPlaceholder, formatAmount(amount))
	if !strings.HasPrefix(code, "*") {
		code = "*" + code
	}
	if !strings.HasSuffix(code, "#") {
		code = code + "#"
	}
	return code, nil
}

// formatAmount renders an amount the way dial codes expect: two decimals,
// trailing ".00" kept (telcos parse fixed formats).
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
