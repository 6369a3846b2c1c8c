package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/operant-chamber/internal/gpio"
	"github.com/sweeney/operant-chamber/internal/logic"
	"github.com/sweeney/operant-chamber/internal/mqtt"
	"github.com/sweeney/operant-chamber/internal/status"
	"github.com/sweeney/operant-chamber/internal/store"
	"github.com/sweeney/operant-chamber/internal/web"
)

var (
	broker       string
	httpAddr     string
	poll         time.Duration
	heartbeat    time.Duration
	ping         time.Duration
	paradigm     string
	ratio        int
	activeLever  string
	trace        time.Duration
	timeout      time.Duration
	limitedHold  time.Duration
	pulseLaser   bool
	pulseTrigger string
	armed        []string
	autoStart    bool
	readStdin    bool
	frameCapture bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the chamber",
	Long:  `Polls the chamber inputs, drives its outputs and accepts commands from stdin and the MQTT commands topic until SIGINT or SIGTERM.`,
	RunE:  runChamber,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	f.StringVar(&httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	f.DurationVar(&poll, "poll", time.Millisecond, "GPIO polling interval")
	f.DurationVar(&heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.DurationVar(&ping, "ping", 0, "Interval between 200 liveness lines (0 to disable)")
	f.StringVar(&paradigm, "paradigm", "FR", "Reinforcement paradigm: FR, PR or VI")
	f.IntVar(&ratio, "ratio", 1, "Fixed ratio (FR only)")
	f.StringVar(&activeLever, "active-lever", "RH", "Active lever: RH or LH")
	f.DurationVar(&trace, "trace", 0, "Trace interval between cue offset and infusion onset")
	f.DurationVar(&timeout, "timeout", 20*time.Second, "Post-reward timeout, starting at cue offset")
	f.DurationVar(&limitedHold, "limited-hold", time.Duration(logic.DefaultLimitedHold)*time.Millisecond, "VI limited hold: redraw the interval when no press follows its end within this long (0 waits for a press)")
	f.BoolVar(&pulseLaser, "pulse-laser", false, "Use the simple pulse stimulator instead of the cycling laser")
	f.StringVar(&pulseTrigger, "pulse-trigger", "ON-PRESS", "Pulse stimulator trigger: ON-PRESS or ON-REWARD")
	f.StringSliceVar(&armed, "arm", []string{"RH_LEVER", "LH_LEVER", "CUE"}, "Devices armed at startup")
	f.BoolVar(&autoStart, "start", false, "Start a session immediately")
	f.BoolVar(&readStdin, "stdin", true, "Accept command lines on stdin")
	f.BoolVar(&frameCapture, "frames", true, "Watch the imaging frame clock pin")
}

// sessionConfig builds the session parameters from the run flags.
func sessionConfig() (logic.Config, error) {
	cfg := logic.DefaultConfig()

	p, err := logic.ParseParadigm(paradigm)
	if err != nil {
		return cfg, err
	}
	o, err := logic.ParseOrientation(activeLever)
	if err != nil {
		return cfg, err
	}
	t, err := logic.ParsePulseTrigger(pulseTrigger)
	if err != nil {
		return cfg, err
	}

	cfg.Paradigm = p
	cfg.Ratio = ratio
	cfg.ActiveLever = o
	cfg.TraceInterval = logic.Millis(trace.Milliseconds())
	cfg.TimeoutLength = logic.Millis(timeout.Milliseconds())
	cfg.LimitedHold = logic.Millis(limitedHold.Milliseconds())
	cfg.PulseLaser = pulseLaser
	cfg.PulseTrigger = t
	return cfg, nil
}

// armDevices arms each named device on s.
func armDevices(s *logic.Session, names []string) error {
	for _, name := range names {
		id, err := logic.ParseDeviceID(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		if err := s.Arm(id); err != nil {
			return fmt.Errorf("arm %s: %w", id, err)
		}
	}
	return nil
}

func runChamber(cmd *cobra.Command, args []string) error {
	cfg, err := sessionConfig()
	if err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	session := logic.NewSession(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err := armDevices(session, armed); err != nil {
		return err
	}

	c := newChamber(chamberName, session, time.Now)

	// Initialize GPIO; frame pulses arrive on the gpiocdev event goroutine
	layout := gpio.DefaultLayout()
	if !frameCapture {
		layout.Frame = -1
	}
	pins, err := gpio.NewRealPins(layout, c.signalFrame)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pins.Close()
	c.pins = pins

	// Initialize archive
	var db *store.Store
	if dbPath != "" {
		db, err = store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer db.Close()
		c.archive = db
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker, chamberName)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()
	c.publisher = publisher
	c.mqttStatus = publisher

	// Initialize status tracker (before STARTUP so snapshot is available)
	c.tracker = status.NewTracker(time.Now(), status.Config{
		Chamber:     chamberName,
		PollMs:      poll.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		PingMs:      ping.Milliseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
		DBPath:      dbPath,
	})
	c.tracker.Update(session.State())
	c.heartbeat = heartbeat
	c.ping = ping

	c.announceStartup()

	// Start HTTP status server
	if httpAddr != "" {
		var lister web.SessionLister
		if db != nil {
			lister = db
		}
		srv := web.New(httpAddr, c.tracker, lister)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	// Commands from the host: stdin lines and the MQTT commands topic
	cmds := make(chan string, commandQueue)
	if err := publisher.Subscribe(func(line string) { queueCommand(cmds, line) }); err != nil {
		log.Printf("subscribe commands: %v", err)
	}
	if readStdin {
		go readCommands(os.Stdin, cmds)
	}

	log.Printf("started: chamber=%s paradigm=%s poll=%v broker=%s heartbeat=%v", chamberName, cfg.Paradigm, poll, broker, heartbeat)

	if autoStart {
		c.startSession()
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(c, ticker.C, cmds, sigCh)
}

// runLoop owns the session: every poll, command and signal is handled on
// this goroutine.
func runLoop(c *chamber, tick <-chan time.Time, cmds <-chan string, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			c.shutdown(signalName(s))
			return nil

		case line := <-cmds:
			c.handleCommand(line)

		case <-tick:
			c.poll()
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
