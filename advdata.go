package linklayer

import "encoding/binary"

// AD types used by the decoding helpers. See the Core Specification
// Supplement, Part A.
const (
	ADTypeFlags            = 0x01
	ADTypeSomeUUID16       = 0x02
	ADTypeAllUUID16        = 0x03
	ADTypeShortName        = 0x08
	ADTypeCompleteName     = 0x09
	ADTypeTxPower          = 0x0A
	ADTypeServiceData16    = 0x16
	ADTypeManufacturerData = 0xFF
)

// AdvData is the advertising data of an advertising PDU or scan response: a
// sequence of length, type, value structures.
type AdvData []byte

// Field returns the value of the first structure of the given type, or nil.
// Decoding stops at the first malformed structure.
func (d AdvData) Field(typ byte) []byte {
	b := d
	for len(b) >= 2 {
		l := int(b[0])
		if l == 0 {
			// Early termination: the rest is padding.
			return nil
		}
		if len(b) < 1+l {
			return nil
		}
		if b[1] == typ {
			return b[2 : 1+l]
		}
		b = b[1+l:]
	}
	return nil
}

// Flags returns the flags byte, if present.
func (d AdvData) Flags() (byte, bool) {
	b := d.Field(ADTypeFlags)
	if len(b) < 1 {
		return 0, false
	}
	return b[0], true
}

// LocalName returns the complete local name, or the shortened one if that
// is all there is.
func (d AdvData) LocalName() string {
	if b := d.Field(ADTypeCompleteName); b != nil {
		return string(b)
	}
	return string(d.Field(ADTypeShortName))
}

// TxPower returns the advertised transmit power in dBm.
func (d AdvData) TxPower() (int, bool) {
	b := d.Field(ADTypeTxPower)
	if len(b) < 1 {
		return 0, false
	}
	return int(int8(b[0])), true
}

// ServiceUUIDs returns the complete and incomplete lists of 16-bit service
// UUIDs.
func (d AdvData) ServiceUUIDs() []uint16 {
	var uuids []uint16
	for _, typ := range []byte{ADTypeAllUUID16, ADTypeSomeUUID16} {
		b := d.Field(typ)
		for len(b) >= 2 {
			uuids = append(uuids, binary.LittleEndian.Uint16(b))
			b = b[2:]
		}
	}
	return uuids
}

// ServiceData returns the 16-bit service UUID and data of the first service
// data structure.
func (d AdvData) ServiceData() (uuid uint16, data []byte, ok bool) {
	b := d.Field(ADTypeServiceData16)
	if len(b) < 2 {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint16(b), b[2:], true
}

// ManufacturerData returns the company identifier and the data that
// follows it.
func (d AdvData) ManufacturerData() (company uint16, data []byte, ok bool) {
	b := d.Field(ADTypeManufacturerData)
	if len(b) < 2 {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint16(b), b[2:], true
}

// Data returns the report payload as advertising data.
func (r Report) Data() AdvData {
	return AdvData(r.Payload)
}
