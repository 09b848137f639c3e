package menu

import "strings"

var emojiByName = map[string]string{
	"idly":   "🍚",
	"poori":  "🥞",
	"vada":   "🍩",
	"dosa":   "🥙",
	"balpan": "🍲",
	"tea":    "☕",
	"coffee": "☕",
	"puttu":  "🍚",
}

// Emoji returns the icon shown for an item that has no image.
func Emoji(name string) string {
	if e, ok := emojiByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return e
	}
	return "🍽️"
}
