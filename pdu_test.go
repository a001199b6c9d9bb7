package linklayer

import (
	"bytes"
	"testing"
)

func TestClassifyHeader(t *testing.T) {
	tests := []struct {
		header byte
		typ    PDUType
	}{
		{0x00, PDUAdvInd},
		{0x40, PDUAdvInd}, // TxAdd is not part of the type
		{0x02, PDUAdvNonconnInd},
		{0xC3, PDUScanReq},
		{0x44, PDUScanRsp},
		{0x06, PDUAdvScanInd},
		{0x08, PDUAdvDirectInd},
		{0x3F, PDUType(0x0F)},
	}
	for _, tc := range tests {
		if got := ClassifyHeader(tc.header); got != tc.typ {
			t.Errorf("header %#02x: expected %s but got %s", tc.header, tc.typ, got)
		}
	}
}

func TestPDUTypeSolicitable(t *testing.T) {
	for typ := PDUType(0); typ <= 0x0F; typ++ {
		want := typ == PDUAdvInd || typ == PDUAdvScanInd
		if typ.Solicitable() != want {
			t.Errorf("%s: expected solicitable=%v", typ, want)
		}
	}
}

func TestPDUFields(t *testing.T) {
	raw := "\x46\x09\x00" + // ADV_SCAN_IND, random, length 9
		"\x66\x55\x44\x33\x22\x11" + // AdvA
		"\x02\x01\x06" + // flags
		"\xff\xff" // beyond the length field
	pdu := PDU(raw)

	if pdu.Type() != PDUAdvScanInd {
		t.Errorf("expected ADV_SCAN_IND but got %s", pdu.Type())
	}
	if !pdu.RandomAddress() {
		t.Error("expected a random address")
	}
	addr, ok := pdu.Address()
	if !ok || addr.String() != "11:22:33:44:55:66" {
		t.Errorf("expected address 11:22:33:44:55:66 but got %s (ok=%v)", addr, ok)
	}
	if !bytes.Equal(pdu.Payload(), []byte{0x02, 0x01, 0x06}) {
		t.Errorf("unexpected payload %x", pdu.Payload())
	}
}

func TestPDUTruncated(t *testing.T) {
	pdu := PDU("\x00\x25\x00\x01\x02")
	if _, ok := pdu.Address(); ok {
		t.Error("expected no address in a truncated PDU")
	}
	if p := pdu.Payload(); p != nil {
		t.Errorf("expected no payload but got %x", p)
	}

	// The length field claims more than the buffer holds.
	pdu = PDU("\x00\x25\x00\x01\x02\x03\x04\x05\x06\xaa")
	if !bytes.Equal(pdu.Payload(), []byte{0xaa}) {
		t.Errorf("expected payload bounded by the buffer but got %x", pdu.Payload())
	}

	if PDU(nil).Type() != PDUAdvInd || PDU(nil).RandomAddress() || PDU(nil).Payload() != nil {
		t.Error("empty PDU must have zero fields")
	}
}

func TestScanRequest(t *testing.T) {
	req := newScanRequest(DefaultInitiatorAddress)
	want := []byte{
		0xC3, 0x0C, 0x00,
		0xDE, 0xDE, 0xDE, 0xDE, 0xDE, 0xDE,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(req[:], want) {
		t.Errorf("expected template %x but got %x", want, req[:])
	}

	rx := []byte{0x00, 0x09, 0x00, 1, 2, 3, 4, 5, 6, 0x02, 0x01, 0x06}
	req.target(rx)
	if !bytes.Equal(req[9:15], rx[3:9]) {
		t.Errorf("expected AdvA %x but got %x", rx[3:9], req[9:15])
	}
	if !bytes.Equal(req[:9], want[:9]) {
		t.Errorf("target changed the header or InitA: %x", req[:9])
	}
	if ClassifyHeader(req[0]) != PDUScanReq {
		t.Errorf("expected SCAN_REQ but got %s", ClassifyHeader(req[0]))
	}
}
