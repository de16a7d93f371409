// SPDX-License-Identifier: GPL-3.0-or-later

package ami

import (
	"strings"

	"github.com/dialtonehq/callcheck/internal/pbx"
)

const (
	eventChannel          = "Event: CoreShowChannel"
	eventChannelsComplete = "Event: CoreShowChannelsComplete"
)

// parseChannelEvents splits raw manager protocol output into channel
// records. The completion event shares the block marker prefix and the
// response preamble precedes the first marker; both produce blocks
// without a channel field and are dropped, as is any block truncated by
// a timed out read.
func parseChannelEvents(raw string) []pbx.ChannelRecord {
	blocks := strings.Split(raw, eventChannel)
	if len(blocks) < 2 {
		return nil
	}

	var records []pbx.ChannelRecord

	for _, block := range blocks[1:] {
		rec := parseEventBlock(block)
		if _, ok := rec["channel"]; ok {
			records = append(records, rec)
		}
	}

	return records
}

func parseEventBlock(block string) pbx.ChannelRecord {
	rec := make(pbx.ChannelRecord)

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Event:") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		rec[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	return rec
}
