// SPDX-License-Identifier: GPL-3.0-or-later

// Package phonenum normalizes dialed phone numbers and derives the
// trailing digits used as line identity throughout the service.
package phonenum

import "strings"

// MatchDigits is the number of trailing digits two numbers must share
// to be considered the same line. Seven digits survive the country and
// area code prefix differences between the dialer and the switch.
const MatchDigits = 7

// Normalize strips every non-digit byte from a phone number. It is
// idempotent.
func Normalize(number string) string {
	var b strings.Builder
	b.Grow(len(number))

	for i := 0; i < len(number); i++ {
		if c := number[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}

	return b.String()
}

// LastDigits returns the trailing n digits of the normalized number.
// Numbers with fewer digits are returned whole.
func LastDigits(number string, n int) string {
	s := Normalize(number)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
