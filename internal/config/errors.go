package config

import (
	"errors"
	"fmt"
)

// ErrMissingConnectString is matched by MissingConnectionEndpointError.
var ErrMissingConnectString = errors.New("connectString is not set")

// MissingConnectionEndpointError is returned when a persistence unit has no
// connectString. The message always names the connectString setting.
type MissingConnectionEndpointError struct {
	Unit string
}

func (e *MissingConnectionEndpointError) Error() string {
	return fmt.Sprintf("persistence unit %q: required setting connectString is not set\nHint: Set units.%s.connectString in leaprecord.yaml or pass --connect-string", e.Unit, e.Unit)
}

// Is reports whether target is ErrMissingConnectString.
func (e *MissingConnectionEndpointError) Is(target error) bool {
	return target == ErrMissingConnectString
}

// UnknownUnitError is returned when a persistence unit is not configured.
type UnknownUnitError struct {
	Name      string
	Available []string
}

func (e *UnknownUnitError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown persistence unit %q\nHint: No units are configured; add one under units: in leaprecord.yaml", e.Name)
	}
	return fmt.Sprintf("unknown persistence unit %q\nAvailable units: %v", e.Name, e.Available)
}

// InvalidConnectStringError is returned when a connectString has no scheme.
type InvalidConnectStringError struct {
	Value string
}

func (e *InvalidConnectStringError) Error() string {
	return fmt.Sprintf("invalid connectString %q: expected <scheme>:<location>, e.g. sqlite:./data.db or postgres://host/db", e.Value)
}
