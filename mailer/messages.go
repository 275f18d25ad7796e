package mailer

import (
	"fmt"
	"html"
	"strings"
)

const (
	SubjectActivation = "Please activate your account."
	SubjectReset      = "Reset Your Password"
	SubjectOrder      = "Thank you for ordering with us."
)

const layout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 560px; margin: 0 auto; padding: 16px;">
%s
  </div>
</body>
</html>`

// ActivationBody renders the account verification email.
func ActivationBody(name, link string) string {
	return fmt.Sprintf(layout, fmt.Sprintf(`    <h2>Hi %s,</h2>
    <p>Please click on the link below to confirm your registration.</p>
    <p><a href="%s">%s</a></p>`, html.EscapeString(name), link, link))
}

// ResetBody renders the password reset email.
func ResetBody(name, link string) string {
	return fmt.Sprintf(layout, fmt.Sprintf(`    <h2>Hi %s,</h2>
    <p>Please click on the link below to reset your password.</p>
    <p><a href="%s">%s</a></p>`, html.EscapeString(name), link, link))
}

// OrderLine is one row of the confirmation table.
type OrderLine struct {
	Title    string
	Quantity int
	Amount   string
}

// OrderBody renders the order confirmation email.
func OrderBody(name, orderNumber string, lines []OrderLine, subtotal, tax, total string) string {
	var rows strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&rows, "      <tr><td>%s</td><td>%d</td><td>%s</td></tr>\n",
			html.EscapeString(l.Title), l.Quantity, l.Amount)
	}
	return fmt.Sprintf(layout, fmt.Sprintf(`    <h2>Hi %s,</h2>
    <p>Your order <strong>%s</strong> has been placed.</p>
    <table>
%s    </table>
    <p>Subtotal: %s<br>Tax: %s<br><strong>Grand total: %s</strong></p>`,
		html.EscapeString(name), html.EscapeString(orderNumber), rows.String(), subtotal, tax, total))
}
