package linklayer

import (
	"fmt"
	"strings"
)

// ScanType selects passive or active scanning.
type ScanType uint8

const (
	ScanPassive ScanType = 0x00
	ScanActive  ScanType = 0x01
)

func (t ScanType) String() string {
	switch t {
	case ScanPassive:
		return "passive"
	case ScanActive:
		return "active"
	default:
		return fmt.Sprintf("ScanType(%#02x)", uint8(t))
	}
}

// AddressType is the type of the device address used in scan requests.
type AddressType uint8

const (
	AddressPublic AddressType = 0x00
	AddressRandom AddressType = 0x01
)

func (t AddressType) String() string {
	switch t {
	case AddressPublic:
		return "public"
	case AddressRandom:
		return "random"
	default:
		return fmt.Sprintf("AddressType(%#02x)", uint8(t))
	}
}

// FilterPolicy is passed through to the link layer unchanged. The scanner
// itself does no allow-list filtering.
type FilterPolicy uint8

const (
	FilterAcceptAll     FilterPolicy = 0x00
	FilterAllowListOnly FilterPolicy = 0x01
)

func (p FilterPolicy) String() string {
	switch p {
	case FilterAcceptAll:
		return "accept-all"
	case FilterAllowListOnly:
		return "allow-list"
	default:
		return fmt.Sprintf("FilterPolicy(%#02x)", uint8(p))
	}
}

// ScanParameters holds the configuration of the scanner. It can only be
// changed while the scanner is not scanning.
type ScanParameters struct {
	Type           ScanType
	OwnAddressType AddressType
	FilterPolicy   FilterPolicy
}

var errUnknownValue = fmt.Errorf("linklayer: unknown value: %w", StatusInvalidParameters)

// ParseScanType parses "passive" or "active", ignoring case.
func ParseScanType(s string) (ScanType, error) {
	switch strings.ToLower(s) {
	case "passive":
		return ScanPassive, nil
	case "active":
		return ScanActive, nil
	}
	return 0, fmt.Errorf("scan type %q: %w", s, errUnknownValue)
}

// ParseAddressType parses "public" or "random", ignoring case.
func ParseAddressType(s string) (AddressType, error) {
	switch strings.ToLower(s) {
	case "public":
		return AddressPublic, nil
	case "random":
		return AddressRandom, nil
	}
	return 0, fmt.Errorf("address type %q: %w", s, errUnknownValue)
}

// ParseFilterPolicy parses "accept-all" or "allow-list", ignoring case.
func ParseFilterPolicy(s string) (FilterPolicy, error) {
	switch strings.ToLower(s) {
	case "accept-all":
		return FilterAcceptAll, nil
	case "allow-list":
		return FilterAllowListOnly, nil
	}
	return 0, fmt.Errorf("filter policy %q: %w", s, errUnknownValue)
}
