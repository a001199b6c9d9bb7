// Package linklayer implements the scanning role of a Bluetooth Low Energy
// link layer on top of a single radio peripheral.
//
// The Scanner drives the radio through the receive/transmit sequence that
// discovers advertisers and, for scannable advertisements, solicits a scan
// response. Radio operations and the hardware event-routing fabric are
// supplied by the caller through the Radio and EventRouter interfaces, so the
// same state machine runs bare metal (see the nrf build of PPI) and hosted
// against the software models in the sim package.
package linklayer // import "tinygo.org/x/linklayer"
