package domain

import (
	"errors"
	"strings"
)

// ActionKind enumerates operator actions attached to a notification prompt.
type ActionKind string

const (
	ActionApprove    ActionKind = "approve"
	ActionReject     ActionKind = "reject"
	ActionAssignCode ActionKind = "setcode"
)

// ErrInvalidAction is returned when an action token does not decode to a
// known kind and target.
var ErrInvalidAction = errors.New("invalid action token")

const actionTokenSeparator = "_"

// Action is a decoded operator action. The wire form is "{kind}_{id}";
// registration ids never contain the separator.
type Action struct {
	Kind           ActionKind
	RegistrationID string
}

// Token encodes the action into its callback-data wire form.
func (a Action) Token() string {
	return string(a.Kind) + actionTokenSeparator + a.RegistrationID
}

// ParseActionToken decodes a callback token, splitting on the first
// separator. Unknown kinds and malformed payloads fail with ErrInvalidAction
// rather than falling through.
func ParseActionToken(token string) (Action, error) {
	kind, id, ok := strings.Cut(token, actionTokenSeparator)
	if !ok || id == "" {
		return Action{}, ErrInvalidAction
	}
	switch ActionKind(kind) {
	case ActionApprove, ActionReject, ActionAssignCode:
		return Action{Kind: ActionKind(kind), RegistrationID: id}, nil
	default:
		return Action{}, ErrInvalidAction
	}
}
