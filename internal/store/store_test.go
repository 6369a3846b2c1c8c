package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/operant-chamber/internal/logic"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "archive.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginAndListSessions(t *testing.T) {
	s := tempStore(t)
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first, err := s.BeginSession("box1", logic.ParadigmFR, 5, t0)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a session ID")
	}
	second, err := s.BeginSession("box1", logic.ParadigmVI, 1, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if _, err := s.BeginSession("box2", logic.ParadigmPR, 1, t0); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	sessions, err := s.ListSessions("box1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions for box1, got %d", len(sessions))
	}
	if sessions[0].ID != second.ID {
		t.Errorf("expected newest first, got %s", sessions[0].ID)
	}
	if sessions[1].Paradigm != "FR" || sessions[1].Ratio != 5 {
		t.Errorf("unexpected session %+v", sessions[1])
	}
	if sessions[1].EndedAt != nil {
		t.Error("open session should have no end time")
	}

	all, err := s.ListSessions("")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 sessions overall, got %d", len(all))
	}
}

func TestEndSession(t *testing.T) {
	s := tempStore(t)
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess, _ := s.BeginSession("box1", logic.ParadigmFR, 1, t0)

	if err := s.EndSession(sess.ID, t0.Add(30*time.Minute)); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	sessions, _ := s.ListSessions("box1")
	if sessions[0].EndedAt == nil {
		t.Fatal("expected end time")
	}
	if !sessions[0].EndedAt.Equal(t0.Add(30 * time.Minute)) {
		t.Errorf("unexpected end time %v", sessions[0].EndedAt)
	}

	if err := s.EndSession("missing", t0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendAndReadRecords(t *testing.T) {
	s := tempStore(t)
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess, _ := s.BeginSession("box1", logic.ParadigmFR, 1, t0)

	recs := []logic.Record{
		{Kind: logic.RecordPress, Source: "RH_LEVER", Event: "ACTIVE_PRESS", Start: 1101, End: 1301},
		{Kind: logic.RecordInfusion, Source: "PUMP", Event: "INFUSION", Start: 3201, End: 5201},
		{Kind: logic.RecordFrame, Start: 42},
	}
	for i, r := range recs {
		if err := s.AppendRecord(sess.ID, r, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("AppendRecord: %v", err)
		}
	}

	got, err := s.Records(sess.ID)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	want := []string{"RH_LEVER,ACTIVE_PRESS,1101,1301", "PUMP,INFUSION,3201,5201", "FRAME_TIMESTAMP,42"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Line != want[i] {
			t.Errorf("record %d: got %q, want %q", i, got[i].Line, want[i])
		}
		if got[i].SessionID != sess.ID {
			t.Errorf("record %d: wrong session %s", i, got[i].SessionID)
		}
	}
	if got[1].Kind != "INFUSION" {
		t.Errorf("unexpected kind %s", got[1].Kind)
	}

	sessions, _ := s.ListSessions("box1")
	if sessions[0].Records != 3 {
		t.Errorf("expected record count 3, got %d", sessions[0].Records)
	}
}

func TestReopenKeepsArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	sess, _ := s.BeginSession("box1", logic.ParadigmFR, 1, time.Now())
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	sessions, _ := s.ListSessions("")
	if len(sessions) != 1 || sessions[0].ID != sess.ID {
		t.Errorf("archive not persisted: %+v", sessions)
	}
}
