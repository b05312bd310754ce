// Package state tracks which conversation step each user is on. It is a
// pure FSM: conversation data lives in the domain stores, not here.
package state
