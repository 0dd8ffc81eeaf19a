package checkout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardRe  = regexp.MustCompile(`^\d{16}$`)
	spaceRe = regexp.MustCompile(`\s`)
)

type PaymentInfo struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	CardName   string `json:"cardName"`
}

// Form is what the shopper fills in on the checkout page. Payment details
// are validated and never sent anywhere.
type Form struct {
	Shipping orders.ShippingInfo `json:"shippingInfo"`
	Payment  PaymentInfo         `json:"paymentInfo"`
}

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// Validate checks the form locally; it returns nil or a *ValidationError.
func Validate(f Form) error {
	fields := map[string]string{}
	required := func(name, value, msg string) {
		if strings.TrimSpace(value) == "" {
			fields[name] = msg
		}
	}

	s, p := f.Shipping, f.Payment
	required("firstName", s.FirstName, "first name is required")
	required("lastName", s.LastName, "last name is required")
	required("email", s.Email, "email is required")
	required("phone", s.Phone, "phone is required")
	required("address", s.Address, "address is required")
	required("city", s.City, "city is required")
	required("region", s.Region, "region is required")
	required("postalCode", s.PostalCode, "postal code is required")

	required("cardNumber", p.CardNumber, "card number is required")
	required("expiryDate", p.ExpiryDate, "expiry date is required")
	required("cvv", p.CVV, "cvv is required")
	required("cardName", p.CardName, "name on card is required")

	if s.Email != "" && !ValidEmail(s.Email) {
		fields["email"] = "email is not valid"
	}
	if p.CardNumber != "" && !cardRe.MatchString(spaceRe.ReplaceAllString(p.CardNumber, "")) {
		fields["cardNumber"] = "card number must have 16 digits"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
