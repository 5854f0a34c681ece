package domain

import "strings"

// Account is the wallet address the user is acting as.
// An empty Account means no wallet is connected.
type Account string

// String returns the string representation of Account.
func (a Account) String() string {
	return string(a)
}

// IsEmpty reports whether no account is set.
func (a Account) IsEmpty() bool {
	return strings.TrimSpace(string(a)) == ""
}

// ConnectionState is the lifecycle state of the wallet session.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "DISCONNECTED"
	StateConnecting   ConnectionState = "CONNECTING"
	StateConnected    ConnectionState = "CONNECTED"
)

// String returns the string representation of ConnectionState.
func (s ConnectionState) String() string {
	return string(s)
}
