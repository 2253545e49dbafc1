package core

import (
	"sort"
	"strings"
)

// Icon is a symbolic glyph name understood by clients.
type Icon string

// IconUnknown is substituted for any name outside the known set.
const IconUnknown Icon = "help-circle"

var icons = map[string]Icon{}

func init() {
	for _, name := range []string{
		"activity", "baby", "bike", "book", "book-open", "briefcase", "bus",
		"camera", "car", "cloud", "coffee", "credit-card", "dollar-sign",
		"file-text", "film", "first-aid", "gift", "globe", "graduation-cap",
		"heart", "home", "laptop", "monitor", "moon", "music", "package",
		"plane", "scissors", "ship", "shirt", "shopping-bag", "shopping-cart",
		"smartphone", "star", "sun", "tag", "tool", "train", "trending-up",
		"truck", "tv", "umbrella", "utensils", "wallet", "wifi", "wrench", "zap",
	} {
		icons[name] = Icon(name)
	}
}

// ResolveIcon maps name to its Icon. Unknown or empty names yield IconUnknown.
func ResolveIcon(name string) Icon {
	if icon, ok := icons[strings.ToLower(strings.TrimSpace(name))]; ok {
		return icon
	}
	return IconUnknown
}

// IconNames lists the known icon names in lexical order.
func IconNames() []string {
	names := make([]string, 0, len(icons))
	for name := range icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
