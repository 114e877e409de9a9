package parse

import "strings"

func runeIn(r rune, set string) bool {
	return strings.ContainsRune(set, r)
}
