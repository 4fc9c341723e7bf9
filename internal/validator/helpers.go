package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// RgxPAN matches a permanent account number: five uppercase letters,
	// four digits and a trailing uppercase letter, e.g. ABCDE1234A.
	RgxPAN = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

	RgxUsername = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}

	_, err := mail.ParseAddress(value)
	return err == nil
}

func In(value string, safelist ...string) bool {
	for i := range safelist {
		if value == safelist[i] {
			return true
		}
	}
	return false
}
