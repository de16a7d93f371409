// SPDX-License-Identifier: GPL-3.0-or-later

package checker

import (
	"regexp"
	"strings"

	"github.com/dialtonehq/callcheck/internal/pbx"
	"github.com/dialtonehq/callcheck/internal/phonenum"
)

var reDigitRun = regexp.MustCompile(`\d{7,}`)

// matcher decides whether a channel record belongs to a dialed number by
// scanning every field value for digit runs and comparing their trailing
// digits. The scan is deliberately broad: a run in any field counts, not just
// in number-bearing fields.
type matcher struct {
	target string
	caller string
}

func newMatcher(dialed, callerID string) matcher {
	return matcher{
		target: phonenum.LastDigits(dialed, phonenum.MatchDigits),
		caller: phonenum.LastDigits(callerID, phonenum.MatchDigits),
	}
}

func (m matcher) Match(rec pbx.ChannelRecord) bool {
	if m.target == "" {
		return false
	}
	if m.caller != "" && phonenum.LastDigits(rec.CallerNumber(), phonenum.MatchDigits) != m.caller {
		return false
	}

	for _, run := range reDigitRun.FindAllString(searchText(rec), -1) {
		if phonenum.LastDigits(run, phonenum.MatchDigits) == m.target {
			return true
		}
	}

	return false
}

// searchText joins all field values with a separator so digit runs from
// adjacent fields never merge into one.
func searchText(rec pbx.ChannelRecord) string {
	values := make([]string, 0, len(rec))
	for _, v := range rec {
		values = append(values, v)
	}
	return strings.Join(values, " ")
}
