package parse

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts the bytes of a source file to text.  A byte order mark
// selects UTF-8 or UTF-16 and is dropped; without one the input is read as
// UTF-8, with invalid sequences replaced by U+FFFD.
func Decode(src []byte) (string, error) {
	var dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	var out, _, err = transform.Bytes(dec, src)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
