package sim

import (
	"bytes"

	"tinygo.org/x/linklayer"
)

// Advertiser is a scripted remote device.
type Advertiser struct {
	Address linklayer.MAC
	Random  bool
	Type    linklayer.PDUType
	Data    []byte

	// ScanResponse is sent in answer to a SCAN_REQ. Without it the
	// advertiser ignores requests.
	ScanResponse []byte
}

// AdvertisingPDU returns the advertising PDU in radio memory layout.
func (a *Advertiser) AdvertisingPDU() []byte {
	return BuildPDU(a.Type, a.Random, a.Address, a.Data)
}

// ScanResponsePDU returns the SCAN_RSP PDU in radio memory layout.
func (a *Advertiser) ScanResponsePDU() []byte {
	return BuildPDU(linklayer.PDUScanRsp, a.Random, a.Address, a.ScanResponse)
}

// BuildPDU assembles header, length, S1 padding, address and data.
func BuildPDU(typ linklayer.PDUType, random bool, addr linklayer.MAC, data []byte) []byte {
	header := byte(typ) & 0x0F
	if random {
		header |= 0x40
	}
	pdu := make([]byte, 0, 3+len(addr)+len(data))
	pdu = append(pdu, header, byte(len(addr)+len(data)), 0x00)
	pdu = append(pdu, addr[:]...)
	return append(pdu, data...)
}

// Air holds the advertisers in range. Advertisements are heard round robin.
type Air struct {
	Advertisers []Advertiser
	next        int
}

func (a *Air) empty() bool {
	return len(a.Advertisers) == 0
}

func (a *Air) nextAdvertiser() *Advertiser {
	adv := &a.Advertisers[a.next%len(a.Advertisers)]
	a.next++
	return adv
}

// addressed returns the advertiser a SCAN_REQ is meant for.
func (a *Air) addressed(req []byte) *Advertiser {
	if len(req) < 15 || linklayer.ClassifyHeader(req[0]) != linklayer.PDUScanReq {
		return nil
	}
	for i := range a.Advertisers {
		adv := &a.Advertisers[i]
		if bytes.Equal(req[9:15], adv.Address[:]) {
			return adv
		}
	}
	return nil
}
