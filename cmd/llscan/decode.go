package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tinygo.org/x/linklayer"
)

var errEmptyPDU = errors.New("empty PDU")

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Classify a raw advertising channel PDU",
	Long: `Classifies a PDU given in radio memory layout (header, length, S1
padding, payload) the way the scanner does, and shows whether the scanner
would answer it with a SCAN_REQ.

Separators (spaces, colons and dashes) in the hex string are ignored.`,
	Example: `  llscan decode "40 0c 00 66 55 44 33 22 11 02 01 06 02 0a 00"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	if err := configureColor(cmd); err != nil {
		return err
	}

	raw, err := parseHex(args[0])
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errEmptyPDU
	}

	pdu := linklayer.PDU(raw)
	typ := pdu.Type()
	out := cmd.OutOrStdout()
	label := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(out, "%s %s\n", label("type:"), typ)
	fmt.Fprintf(out, "%s %v\n", label("solicitable:"), typ.Solicitable())
	if addr, ok := pdu.Address(); ok {
		kind := linklayer.AddressPublic
		if pdu.RandomAddress() {
			kind = linklayer.AddressRandom
		}
		fmt.Fprintf(out, "%s %s (%s)\n", label("address:"), addr, kind)
	}
	if payload := pdu.Payload(); len(payload) > 0 {
		fmt.Fprintf(out, "%s %s\n", label("data:"), hex.EncodeToString(payload))
	}
	return nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '-', '\t':
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}
