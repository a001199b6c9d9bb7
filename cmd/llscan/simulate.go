package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"tinygo.org/x/linklayer"
	"tinygo.org/x/linklayer/config"
	"tinygo.org/x/linklayer/rawterm"
	"tinygo.org/x/linklayer/sim"
)

// reportBufferSize bounds the reports waiting to be printed. Older reports
// are overwritten when the printer falls behind.
const reportBufferSize = 256

var simulateCmd = &cobra.Command{
	Use:   "simulate [session.yaml]",
	Short: "Run the scanner against scripted advertisers",
	Long: `Runs the scanner state machine against a simulated radio and a scripted
set of advertisers, printing every advertisement and scan response the
scanner reports, followed by a per-device summary.

Without a session file a built-in set of demo advertisers is used. When
stdin is a terminal, press q to stop early.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolP("verbose", "v", false, "Verbose output (same as --log-level debug)")
	simulateCmd.Flags().Int("advertisements", 0, "Override the number of advertisements to hear (negative runs until stopped)")
	simulateCmd.Flags().Duration("duration", 0, "Override the session duration")
	simulateCmd.Flags().Bool("no-input", false, "Do not read the stop key from the terminal")
}

type deviceSummary struct {
	address        linklayer.MAC
	pdu            linklayer.PDUType
	name           string
	advertisements int
	scanResponses  int
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := configureColor(cmd); err != nil {
		return err
	}

	cfg, err := loadSession(args)
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("advertisements"); cmd.Flags().Changed("advertisements") {
		cfg.Advertisements = n
	}
	if d, _ := cmd.Flags().GetDuration("duration"); d > 0 {
		cfg.Duration = d
	}

	logger, err := configureLogger(cmd, "verbose", cfg.NewLogger())
	if err != nil {
		return err
	}

	params, err := cfg.ScanParameters()
	if err != nil {
		return err
	}
	air, err := cfg.Air()
	if err != nil {
		return err
	}

	router := sim.NewRouter()
	radio := sim.NewRadio(router)
	scanner := linklayer.NewScanner(radio, router, cfg.ScannerOptions(logger)...)

	reports := mpmc.NewOverlappedRingBuffer[linklayer.Report](reportBufferSize)
	scanner.SetReportHandler(func(r linklayer.Report) {
		if overwrites, err := reports.EnqueueM(r); err != nil {
			logger.WithError(err).Warn("report dropped")
		} else if overwrites > 0 {
			logger.WithField("overwritten", overwrites).Debug("report buffer full")
		}
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	dispatcher := linklayer.NewDispatcher(scanner)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = dispatcher.Run(loopCtx)
	}()
	defer func() {
		stopLoop()
		<-loopDone
	}()

	if err := dispatcher.Do(ctx, func(s *linklayer.Scanner) error {
		if err := s.Initialize(); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		if err := s.Enable(); err != nil {
			return fmt.Errorf("enable: %w", err)
		}
		if err := s.SetParameters(params); err != nil {
			return fmt.Errorf("set parameters: %w", err)
		}
		return s.Start()
	}); err != nil {
		return err
	}
	if err := router.Verify(scanner.Timing().Routes()); err != nil {
		return fmt.Errorf("event routing: %w", err)
	}

	noInput, _ := cmd.Flags().GetBool("no-input")
	if !noInput && rawterm.IsTerminal() {
		if err := rawterm.Configure(); err == nil {
			defer rawterm.Restore()
			go waitForStopKey(cancel)
		}
	}

	logger.WithFields(logrus.Fields{
		"type":        params.Type,
		"channel":     cfg.Scanner.Channel,
		"advertisers": len(air.Advertisers),
	}).Info("scan started")

	session := &sim.Session{
		Dispatcher:   dispatcher,
		Radio:        radio,
		Router:       router,
		Air:          air,
		CorruptEvery: cfg.CorruptEvery,
		Logger:       logger,
	}

	devices := orderedmap.New[string, *deviceSummary]()
	out := cmd.OutOrStdout()

	sessionDone := make(chan struct{})
	var stats sim.Stats
	var runErr error
	go func() {
		defer close(sessionDone)
		stats, runErr = session.Run(ctx, max(cfg.Advertisements, 0))
	}()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
printing:
	for {
		select {
		case <-sessionDone:
			break printing
		case <-ticker.C:
			drainReports(out, reports, devices)
		}
	}

	// The scanner is stopped with a fresh context: ctx may be done already.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := dispatcher.Do(stopCtx, func(s *linklayer.Scanner) error { return s.Stop() }); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	drainReports(out, reports, devices)

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return fmt.Errorf("simulation failed: %w", runErr)
	}

	printSummary(out, devices, stats)
	logger.WithField("device_count", devices.Len()).Info("scan completed")
	return nil
}

func loadSession(args []string) (*config.Config, error) {
	if len(args) == 0 {
		cfg := config.DefaultConfig()
		cfg.Advertisers = demoAdvertisers
		return cfg, cfg.Validate()
	}
	return config.Load(args[0])
}

var demoAdvertisers = []config.AdvertiserConfig{
	{
		Address:      "C0:FF:EE:00:00:01",
		Random:       true,
		PDU:          "ADV_IND",
		Data:         "020106" + "0709" + hex.EncodeToString([]byte("Sensor")),
		ScanResponse: "0aff" + "ffff010203040506" + "07",
	},
	{
		Address: "C0:FF:EE:00:00:02",
		Random:  true,
		PDU:     "ADV_NONCONN_IND",
		Data:    "0201041aff4c000215" + "00112233445566778899aabbccddeeff" + "00010002c5",
	},
	{
		Address:      "00:1B:DC:00:00:03",
		PDU:          "ADV_SCAN_IND",
		Data:         "020106",
		ScanResponse: "0409" + hex.EncodeToString([]byte("Tag")),
	},
	{
		Address: "00:1B:DC:00:00:04",
		PDU:     "ADV_IND",
		Data:    "020106",
	},
}

func drainReports(out io.Writer, reports mpmc.RichOverlappedRingBuffer[linklayer.Report], devices *orderedmap.OrderedMap[string, *deviceSummary]) {
	advColor := color.New(color.FgCyan).SprintFunc()
	rspColor := color.New(color.FgGreen).SprintFunc()

	for !reports.IsEmpty() {
		r, err := reports.Dequeue()
		if err != nil {
			return
		}

		key := r.Address.String()
		dev, ok := devices.Get(key)
		if !ok {
			dev = &deviceSummary{address: r.Address}
			devices.Set(key, dev)
		}

		if name := r.Data().LocalName(); name != "" {
			dev.name = name
		}

		if r.Type == linklayer.PDUScanRsp {
			dev.scanResponses++
			fmt.Fprintf(out, "%s %s ch%d %s\n", rspColor(fmt.Sprintf("%-16s", r.Type)), r.Address, r.Channel, hex.EncodeToString(r.Payload))
			continue
		}
		dev.advertisements++
		dev.pdu = r.Type
		fmt.Fprintf(out, "%s %s ch%d %s\n", advColor(fmt.Sprintf("%-16s", r.Type)), r.Address, r.Channel, hex.EncodeToString(r.Payload))
	}
}

func printSummary(out io.Writer, devices *orderedmap.OrderedMap[string, *deviceSummary], stats sim.Stats) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(out)
	fmt.Fprintln(out, bold(fmt.Sprintf("%-17s  %-16s  %-12s  %5s  %5s", "ADDRESS", "PDU", "NAME", "ADV", "RSP")))
	for pair := devices.Oldest(); pair != nil; pair = pair.Next() {
		dev := pair.Value
		name := dev.name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(out, "%-17s  %-16s  %-12s  %5d  %5d\n", dev.address, dev.pdu, name, dev.advertisements, dev.scanResponses)
	}
	fmt.Fprintf(out, "\nheard %d advertisements (%d corrupted), sent %d scan requests, got %d scan responses, %d timeouts\n",
		stats.Advertisements, stats.Corrupted, stats.Requests, stats.Responses, stats.Timeouts)
}

func waitForStopKey(cancel context.CancelFunc) {
	for {
		c, err := rawterm.Getchar()
		if err != nil {
			return
		}
		switch c {
		case 'q', 'Q', 3: // 3 is Ctrl-C in raw mode
			cancel()
			return
		}
	}
}
