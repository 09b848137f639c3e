// Package payment builds the UPI payment link shown at checkout. Payment is
// acknowledged by hand; nothing here talks to a payment provider.
package payment

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type Payee struct {
	VPA      string // e.g. restaurant@upi
	Name     string
	Currency string
}

// IntentURI returns the upi://pay link for amount.
func IntentURI(p Payee, amount int) string {
	// url.Values would sort the keys; wallets expect this order.
	params := []string{
		"pa=" + url.QueryEscape(p.VPA),
		"pn=" + url.QueryEscape(p.Name),
		"am=" + strconv.Itoa(amount),
		"cu=" + url.QueryEscape(p.Currency),
	}
	return "upi://pay?" + strings.Join(params, "&")
}

// QRImageURL asks an external code-generation endpoint to render data as a
// square image of size pixels.
func QRImageURL(serviceURL string, size int, data string) (string, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("parse qr service url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("qr service url %q must be absolute", serviceURL)
	}
	if size <= 0 {
		size = 200
	}
	q := u.Query()
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("data", data)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
