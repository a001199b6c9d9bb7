package linklayer

import "fmt"

// PDUType is the advertising channel PDU type, stored in the low nibble of
// the header byte.
type PDUType uint8

const (
	PDUAdvInd        PDUType = 0x00
	PDUAdvNonconnInd PDUType = 0x02
	PDUScanReq       PDUType = 0x03
	PDUScanRsp       PDUType = 0x04
	PDUAdvScanInd    PDUType = 0x06
	PDUAdvDirectInd  PDUType = 0x08
)

func (t PDUType) String() string {
	switch t {
	case PDUAdvInd:
		return "ADV_IND"
	case PDUAdvNonconnInd:
		return "ADV_NONCONN_IND"
	case PDUScanReq:
		return "SCAN_REQ"
	case PDUScanRsp:
		return "SCAN_RSP"
	case PDUAdvScanInd:
		return "ADV_SCAN_IND"
	case PDUAdvDirectInd:
		return "ADV_DIRECT_IND"
	default:
		return fmt.Sprintf("PDUType(%#02x)", uint8(t))
	}
}

// Solicitable reports whether a scanner may answer this PDU with a
// SCAN_REQ.
func (t PDUType) Solicitable() bool {
	return t == PDUAdvInd || t == PDUAdvScanInd
}

// Advertising reports whether t is one of the advertising PDU types a
// scanner listens for.
func (t PDUType) Advertising() bool {
	switch t {
	case PDUAdvInd, PDUAdvNonconnInd, PDUAdvScanInd, PDUAdvDirectInd:
		return true
	}
	return false
}

// Layout of a PDU in radio memory: header (S0), length, one padding byte for
// S1, then the payload. The payload of every advertising PDU starts with the
// six byte advertiser address.
const (
	pduHeaderPos  = 0
	pduLengthPos  = 1
	pduPayloadPos = 3

	pduTypeMask   = 0x0F
	pduTxAddMask  = 0x40
	pduLengthMask = 0x3F

	advAddressPos = pduPayloadPos
	addressLen    = 6

	// RxBufferSize is the size of the buffer handed to the radio for every
	// receive. It covers the largest PDU the radio can write.
	RxBufferSize = 255
)

// ClassifyHeader returns the PDU type encoded in a header byte.
func ClassifyHeader(header byte) PDUType {
	return PDUType(header & pduTypeMask)
}

// PDU is a view over a PDU in radio memory layout.
type PDU []byte

// Type returns the PDU type from the header byte.
func (p PDU) Type() PDUType {
	if len(p) == 0 {
		return 0
	}
	return ClassifyHeader(p[pduHeaderPos])
}

// RandomAddress reports whether the TxAdd bit is set.
func (p PDU) RandomAddress() bool {
	return len(p) > 0 && p[pduHeaderPos]&pduTxAddMask != 0
}

// Address returns the advertiser address at the start of the payload.
func (p PDU) Address() (mac MAC, ok bool) {
	if len(p) < advAddressPos+addressLen {
		return mac, false
	}
	copy(mac[:], p[advAddressPos:advAddressPos+addressLen])
	return mac, true
}

// Payload returns the payload following the address, bounded by both the
// length field and the buffer.
func (p PDU) Payload() []byte {
	if len(p) <= pduLengthPos {
		return nil
	}
	end := pduPayloadPos + int(p[pduLengthPos]&pduLengthMask)
	if end > len(p) {
		end = len(p)
	}
	start := advAddressPos + addressLen
	if start >= end {
		return nil
	}
	return p[start:end]
}

// DefaultInitiatorAddress is the address sent in scan requests unless the
// scanner is built with WithInitiatorAddress.
var DefaultInitiatorAddress = MAC{0xDE, 0xDE, 0xDE, 0xDE, 0xDE, 0xDE}

const (
	scanReqInitAPos = pduPayloadPos
	scanReqAdvAPos  = scanReqInitAPos + addressLen
	scanReqSize     = scanReqAdvAPos + addressLen
)

// scanRequest is the SCAN_REQ sent to scannable advertisers. Only the
// advertiser address changes between requests.
type scanRequest [scanReqSize]byte

func newScanRequest(initiator MAC) scanRequest {
	var req scanRequest
	req[pduHeaderPos] = 0xC3 // SCAN_REQ, TxAdd and RxAdd random
	req[pduLengthPos] = 2 * addressLen
	copy(req[scanReqInitAPos:], initiator[:])
	return req
}

// target copies the advertiser address out of a received advertising PDU.
func (r *scanRequest) target(rx []byte) {
	copy(r[scanReqAdvAPos:scanReqAdvAPos+addressLen], rx[advAddressPos:advAddressPos+addressLen])
}

// Report describes a received advertising PDU or scan response.
type Report struct {
	Type          PDUType
	Address       MAC
	RandomAddress bool
	Channel       uint8
	// Payload is a copy of the advertising data; it does not alias the
	// receive buffer.
	Payload []byte
}
