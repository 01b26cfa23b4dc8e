package utils

import "fmt"

// ShortenLog keeps the head and tail of long identifiers such as base58 addresses so log
// lines stay readable.
func ShortenLog(id string) string {
	indexCut := 8
	if len(id) <= 16 {
		return id
	} else if len(id) <= 24 {
		indexCut = 4
	}
	return fmt.Sprintf("%s...%s", id[:indexCut], id[len(id)-indexCut:])
}
