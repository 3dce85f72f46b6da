package ingest

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const fileNameSuffixChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateFileName builds a document store key:
// {store_lowercased}_{ISO-date}_{4-char-random-suffix}.pdf
// The random suffix keeps same-day keys for one store from colliding.
func GenerateFileName(storeName string, now time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = fileNameSuffixChars[rand.Intn(len(fileNameSuffixChars))]
	}

	return fmt.Sprintf("%s_%s_%s.pdf",
		strings.ToLower(storeName), now.Format("2006-01-02"), string(suffix))
}
