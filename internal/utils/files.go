package utils

import "strings"

var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces characters that can't appear in file names.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Returns fallback when nothing usable is left.
func SanitizeFileName(name, fallback string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	name = strings.Trim(name, ".")
	if name == "" {
		return fallback
	}
	return name
}
