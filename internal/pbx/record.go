// SPDX-License-Identifier: GPL-3.0-or-later

// Package pbx defines the transport-agnostic contract with the telephony
// switch: channel snapshots, channel hangup and the failure taxonomy
// shared by the manager protocol and REST transports.
package pbx

// ChannelRecord is one live channel reported by the switch. Keys are
// lower-cased field names, values are kept verbatim. The manager
// protocol identifies channels by the "channel" field, the REST API by
// the "id" field; transports never emit records lacking their
// identifying field.
type ChannelRecord map[string]string

// ID returns the channel identifier used for hangup requests.
func (r ChannelRecord) ID() string {
	if v, ok := r["channel"]; ok {
		return v
	}
	return r["id"]
}

// CallerNumber returns the caller id number field, or an empty string
// when the record carries none.
func (r ChannelRecord) CallerNumber() string {
	if v, ok := r["calleridnum"]; ok {
		return v
	}
	return r["caller.number"]
}
