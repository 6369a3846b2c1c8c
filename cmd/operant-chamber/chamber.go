package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sweeney/operant-chamber/internal/command"
	"github.com/sweeney/operant-chamber/internal/gpio"
	"github.com/sweeney/operant-chamber/internal/logic"
	"github.com/sweeney/operant-chamber/internal/mqtt"
	"github.com/sweeney/operant-chamber/internal/status"
	"github.com/sweeney/operant-chamber/internal/store"
)

const (
	startBanner = "========== PROGRAM START =========="
	endBanner   = "========== PROGRAM END =========="
)

// archive is the part of the store the loop writes to.
type archive interface {
	BeginSession(chamber string, paradigm logic.Paradigm, ratio int, at time.Time) (*store.Session, error)
	EndSession(id string, at time.Time) error
	AppendRecord(sessionID string, rec logic.Record, at time.Time) error
}

// chamber ties a session to its pins, sinks and clock. Everything except
// signalFrame runs on the loop goroutine.
type chamber struct {
	name       string
	session    *logic.Session
	pins       gpio.Pins
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // optional
	archive    archive               // optional
	tracker    *status.Tracker       // optional

	heartbeat time.Duration
	ping      time.Duration

	now   func() time.Time
	sleep func(time.Duration)
	out   io.Writer

	start     time.Time
	hb        *logic.Heartbeat
	sessionID string
}

func newChamber(name string, session *logic.Session, now func() time.Time) *chamber {
	return &chamber{
		name:    name,
		session: session,
		now:     now,
		sleep:   time.Sleep,
		out:     os.Stdout,
		start:   now(),
		hb:      logic.NewHeartbeat(0),
	}
}

// millis converts a wall clock reading to the loop's monotonic millisecond
// clock, which starts at zero when the chamber is created.
func (c *chamber) millis(t time.Time) logic.Millis {
	return logic.Millis(t.Sub(c.start).Milliseconds())
}

// signalFrame is the frame clock edge handler. It runs on the GPIO event
// goroutine and only touches the session's FrameSync.
func (c *chamber) signalFrame() {
	c.session.Frames.Signal(c.millis(time.Now()))
}

// poll runs one tick: read inputs, advance the session, drive outputs and
// emit whatever records the tick produced.
func (c *chamber) poll() {
	t := c.now()
	in, err := c.pins.Read()
	if err != nil {
		log.Printf("gpio read error: %v", err)
		return
	}

	now := c.millis(t)
	recs := c.session.Tick(in, now)
	if err := c.pins.Write(c.session.Outputs()); err != nil {
		log.Printf("gpio write error: %v", err)
	}
	if rec, ok := c.session.CheckPing(now, logic.Millis(c.ping.Milliseconds())); ok {
		recs = append(recs, rec)
	}
	c.emit(recs, t)

	if hbData := c.hb.Check(now, logic.Millis(c.heartbeat.Milliseconds()), c.session.Counts()); hbData != nil {
		log.Printf("heartbeat: uptime=%v presses=%d/%d/%d licks=%d infusions=%d stims=%d",
			time.Duration(hbData.Uptime)*time.Millisecond,
			hbData.Counts.ActivePresses, hbData.Counts.InactivePresses, hbData.Counts.TimeoutPresses,
			hbData.Counts.Licks, hbData.Counts.Infusions, hbData.Counts.Stims)
		c.publishSystem(t, "HEARTBEAT", "", false)
	}

	c.refreshTracker()
}

// emit writes each record to stdout, publishes it and archives it under the
// running session.
func (c *chamber) emit(recs []logic.Record, t time.Time) {
	for _, rec := range recs {
		line := rec.String()
		fmt.Fprintln(c.out, line)

		if err := c.publisher.Publish(rec); err != nil {
			log.Printf("publish error: %v", err)
		}
		if c.archive != nil && c.sessionID != "" {
			if err := c.archive.AppendRecord(c.sessionID, rec, t); err != nil {
				log.Printf("archive error: %v", err)
			}
		}
		if c.tracker != nil {
			c.tracker.SetLastRecord(line)
		}
	}
}

// handleCommand parses and applies one host command line. Errors are logged,
// never fatal.
func (c *chamber) handleCommand(line string) {
	cmd, err := command.Parse(line)
	if err != nil {
		log.Printf("command %q: %v", line, err)
		return
	}
	switch cmd.Kind {
	case command.KindStart:
		c.startSession()
	case command.KindEnd:
		c.endSession("END")
	default:
		if err := command.Apply(c.session, cmd); err != nil {
			log.Printf("command %q: %v", line, err)
			return
		}
		log.Printf("command: %s", strings.TrimSpace(line))
	}
	c.refreshTracker()
}

// startSession announces the session, pulses the imaging trigger and then
// captures the session origin, so timestamps count from the end of the pulse.
func (c *chamber) startSession() {
	if c.session.Running() {
		log.Printf("start refused: %v", logic.ErrSessionRunning)
		return
	}
	if err := c.session.Validate(); err != nil {
		log.Printf("start refused: %v", err)
		return
	}

	fmt.Fprintln(c.out, startBanner)
	if err := gpio.PulseTrigger(c.pins, gpio.TriggerPulse, c.sleep); err != nil {
		log.Printf("imaging trigger: %v", err)
	}

	t := c.now()
	if err := c.session.Start(c.millis(t)); err != nil {
		log.Printf("start refused: %v", err)
		return
	}

	if c.archive != nil {
		cfg := c.session.Config()
		sess, err := c.archive.BeginSession(c.name, cfg.Paradigm, c.session.Ratio(), t)
		if err != nil {
			log.Printf("archive error: %v", err)
		} else {
			c.sessionID = sess.ID
		}
	}
	if c.tracker != nil {
		c.tracker.SetSessionID(c.sessionID)
	}
	log.Printf("session started: id=%s paradigm=%s ratio=%d", c.sessionID, c.session.Config().Paradigm, c.session.Ratio())
	c.publishSystem(t, "SESSION_START", "", false)
}

// endSession stops the running session: any stimulation in progress is cut
// short and logged, every device is disarmed and the outputs go low.
func (c *chamber) endSession(reason string) {
	if !c.session.Running() {
		log.Printf("end ignored: no session running")
		return
	}

	t := c.now()
	recs := c.session.End(c.millis(t))
	c.emit(recs, t)
	if err := c.pins.Write(logic.Outputs{}); err != nil {
		log.Printf("gpio write error: %v", err)
	}

	fmt.Fprintln(c.out, endBanner)
	if err := gpio.PulseTrigger(c.pins, gpio.TriggerPulse, c.sleep); err != nil {
		log.Printf("imaging trigger: %v", err)
	}

	if c.archive != nil && c.sessionID != "" {
		if err := c.archive.EndSession(c.sessionID, t); err != nil {
			log.Printf("archive error: %v", err)
		}
	}
	log.Printf("session ended: id=%s rewards=%d", c.sessionID, c.session.Rewards)
	c.publishSystem(t, "SESSION_END", reason, false)

	c.sessionID = ""
	if c.tracker != nil {
		c.tracker.SetSessionID("")
	}
}

// announceStartup publishes the retained STARTUP event.
func (c *chamber) announceStartup() {
	c.publishSystem(c.now(), "STARTUP", "", true)
}

// shutdown ends a running session and publishes the retained SHUTDOWN event.
func (c *chamber) shutdown(reason string) {
	if c.session.Running() {
		c.endSession(reason)
	}
	if err := c.pins.Write(logic.Outputs{}); err != nil {
		log.Printf("gpio write error: %v", err)
	}
	c.publishSystem(c.now(), "SHUTDOWN", reason, true)
}

// publishSystem publishes a lifecycle event carrying a full status snapshot.
func (c *chamber) publishSystem(t time.Time, event, reason string, retained bool) {
	ev := mqtt.SystemEvent{
		Timestamp: t,
		Event:     event,
		Reason:    reason,
		SessionID: c.sessionID,
		Retained:  retained,
	}
	if c.tracker != nil {
		c.refreshTracker()
		ev.RawPayload = status.FormatStatusEvent(c.tracker.Snapshot(), event, reason)
	}
	if err := c.publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", strings.ToLower(event), err)
		return
	}
	log.Printf("published %s event", strings.ToLower(event))
}

func (c *chamber) refreshTracker() {
	if c.tracker == nil {
		return
	}
	c.tracker.Update(c.session.State())
	if c.mqttStatus != nil {
		c.tracker.SetMQTTConnected(c.mqttStatus.IsConnected())
	}
}
