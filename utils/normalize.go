package utils

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// SearchKey folds a display string down to a plain ASCII, lowercase search
// key. Discord usernames are full of accents, fancy unicode fonts and
// decorative marks; NFKC first collapses compatibility forms (ｆｕｌｌｗｉｄｔｈ,
// ligatures), then unidecode transliterates what is left.
func SearchKey(s string) string {
	s = norm.NFKC.String(s)
	s = unidecode.Unidecode(s)
	return strings.ToLower(strings.TrimSpace(s))
}
