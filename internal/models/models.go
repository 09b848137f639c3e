package models

import (
	"time"
)

type MenuItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"` // whole rupees
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// MenuItemPatch carries a partial update. Nil fields are left unchanged.
type MenuItemPatch struct {
	Name        *string
	Price       *int
	Image       *string
	Description *string
}

// CartLine is a snapshot of a menu item taken when it was added to a cart.
type CartLine struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

func (l CartLine) Amount() int {
	return l.Price * l.Quantity
}

type Order struct {
	ID    int64      `json:"id"`   // creation time in unix millis
	Date  time.Time  `json:"date"` // UTC
	Items []CartLine `json:"items"`
	Total int        `json:"total"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // Store hashed password
}

// Total sums price × quantity over lines.
func Total(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Amount()
	}
	return total
}

// CloneLines returns a copy that shares no backing array with lines.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
