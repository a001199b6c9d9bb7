package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CommandTestSuite runs llscan commands in process and captures their output.
type CommandTestSuite struct {
	suite.Suite
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func (s *CommandTestSuite) SetupTest() {
	s.stdout = &bytes.Buffer{}
	s.stderr = &bytes.Buffer{}
	rootCmd.SetOut(s.stdout)
	rootCmd.SetErr(s.stderr)
}

func (s *CommandTestSuite) TearDownTest() {
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)
}

func (s *CommandTestSuite) execute(args ...string) error {
	rootCmd.SetArgs(append([]string{"--color", "never"}, args...))
	return rootCmd.Execute()
}

func (s *CommandTestSuite) TestDecodeScannable() {
	err := s.execute("decode", "46 0c 00 66 55 44 33 22 11 02 01 06 02 0a 00")
	s.Require().NoError(err)

	out := s.stdout.String()
	s.Contains(out, "type: ADV_SCAN_IND")
	s.Contains(out, "solicitable: true")
	s.Contains(out, "address: 11:22:33:44:55:66 (random)")
	s.Contains(out, "data: 020106020a00")
}

func (s *CommandTestSuite) TestDecodeDirected() {
	s.Require().NoError(s.execute("decode", "08:06:00:01:02:03:04:05:06"))

	out := s.stdout.String()
	s.Contains(out, "type: ADV_DIRECT_IND")
	s.Contains(out, "solicitable: false")
	s.Contains(out, "(public)")
	s.NotContains(out, "data:")
}

func (s *CommandTestSuite) TestDecodeErrors() {
	s.ErrorIs(s.execute("decode", ""), errEmptyPDU)
	s.ErrorContains(s.execute("decode", "4z"), "invalid hex")
	s.Error(s.execute("decode"))
}

func (s *CommandTestSuite) TestSimulateDemo() {
	err := s.execute("simulate", "--no-input", "--log-level", "error", "--advertisements", "5")
	s.Require().NoError(err)

	out := s.stdout.String()
	s.Contains(out, "ADDRESS")
	s.Contains(out, "C0:FF:EE:00:00:01")
	s.Contains(out, "SCAN_RSP")
	s.Contains(out, "Sensor")
	s.Contains(out, "Tag")
	s.Contains(out, "heard 5 advertisements (0 corrupted), sent 3 scan requests, got 2 scan responses, 1 timeouts")
	s.Empty(s.stderr.String())
}

func (s *CommandTestSuite) TestSimulateSessionFile() {
	session := filepath.Join(s.T().TempDir(), "session.yaml")
	s.Require().NoError(os.WriteFile(session, []byte(`
scanner:
  channel: 38
corrupt_every: 2
advertisements: 4
advertisers:
  - address: "AA:BB:CC:DD:EE:01"
    pdu: ADV_NONCONN_IND
    data: "020104"
`), 0o644))

	err := s.execute("simulate", session, "--no-input", "--log-level", "error", "--advertisements", "4")
	s.Require().NoError(err)

	out := s.stdout.String()
	s.Contains(out, "AA:BB:CC:DD:EE:01")
	s.Contains(out, "ch38")
	s.Contains(out, "heard 4 advertisements (2 corrupted), sent 0 scan requests")
}

func (s *CommandTestSuite) TestSimulateBadSession() {
	err := s.execute("simulate", filepath.Join(s.T().TempDir(), "missing.yaml"), "--no-input")
	s.ErrorContains(err, "failed to read config")
}

func (s *CommandTestSuite) TestInvalidColor() {
	rootCmd.SetArgs([]string{"decode", "--color", "sometimes", "00"})
	s.ErrorContains(rootCmd.Execute(), "invalid color mode")
}

func TestCommandTestSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func TestParseHex(t *testing.T) {
	b, err := parseHex("c3-0c 00:de")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC3, 0x0C, 0x00, 0xDE}, b)
}
