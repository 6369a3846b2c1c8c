package logic

import "fmt"

// RecordKind identifies the type of a behavioral record.
type RecordKind string

const (
	RecordPress    RecordKind = "PRESS"
	RecordLick     RecordKind = "LICK"
	RecordInfusion RecordKind = "INFUSION"
	RecordStim     RecordKind = "STIM"
	RecordFrame    RecordKind = "FRAME"
	RecordPing     RecordKind = "PING"
)

// Record is one line of the behavioral log stream.
// Start and End are already normalized by the session start offset.
type Record struct {
	Kind   RecordKind
	Source string // e.g. "RH_LEVER", "PUMP", "LASER"
	Event  string // e.g. "ACTIVE_PRESS", "INFUSION", "STIM"
	Start  Millis
	End    Millis
}

// String formats the record as a comma-separated log line, e.g.
// "RH_LEVER,ACTIVE_PRESS,1234,1350".
func (r Record) String() string {
	switch r.Kind {
	case RecordFrame:
		return fmt.Sprintf("FRAME_TIMESTAMP,%d", r.Start)
	case RecordPing:
		return "200"
	}
	return fmt.Sprintf("%s,%s,%d,%d", r.Source, r.Event, r.Start, r.End)
}

func pressRecord(l *Lever, start, end Millis) Record {
	return Record{
		Kind:   RecordPress,
		Source: l.Orientation.String() + "_LEVER",
		Event:  l.PressType.String() + "_PRESS",
		Start:  start,
		End:    end,
	}
}

func windowRecord(kind RecordKind, source string, w Window) Record {
	return Record{Kind: kind, Source: source, Event: string(kind), Start: w.Start, End: w.End}
}
