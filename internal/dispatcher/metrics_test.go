package dispatcher

import (
	"testing"
	"time"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()
	m.Record(KindPing, 2*time.Millisecond, "")
	m.Record(KindPing, 4*time.Millisecond, "")
	m.Record(KindApplyEdit, time.Millisecond, "invalid_range")
	m.RecordPanic()

	s := m.Snapshot()
	if s.Requests != 3 || s.Errors != 1 || s.Panics != 1 {
		t.Errorf("Snapshot() totals = %d/%d/%d, want 3/1/1", s.Requests, s.Errors, s.Panics)
	}
	if len(s.Commands) != 2 {
		t.Fatalf("len(Commands) = %d, want 2", len(s.Commands))
	}
	if s.Commands[0].Command != "ping" || s.Commands[1].Command != "apply_edit" {
		t.Errorf("Commands order = %s, %s", s.Commands[0].Command, s.Commands[1].Command)
	}

	ping := m.Command(KindPing)
	if ping == nil {
		t.Fatal("Command(ping) = nil")
	}
	if ping.MinDuration != 2*time.Millisecond || ping.MaxDuration != 4*time.Millisecond {
		t.Errorf("ping min/max = %v/%v", ping.MinDuration, ping.MaxDuration)
	}
	if got := ping.AverageDuration(); got != 3*time.Millisecond {
		t.Errorf("AverageDuration() = %v, want 3ms", got)
	}

	edit := m.Command(KindApplyEdit)
	if edit.ErrorRate() != 100 || edit.LastError != "invalid_range" {
		t.Errorf("apply_edit = %+v", edit)
	}
	if m.Command(KindSaveFile) != nil {
		t.Error("Command(save_file) should be nil before any request")
	}
}

func TestMetrics_TopCommandsAndReset(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 3; i++ {
		m.Record(KindSearch, time.Millisecond, "")
	}
	m.Record(KindPing, time.Millisecond, "")

	top := m.TopCommands(1)
	if len(top) != 1 || top[0].Command != "search_in_buffer" {
		t.Errorf("TopCommands(1) = %+v", top)
	}

	m.Reset()
	if s := m.Snapshot(); s.Requests != 0 || len(s.Commands) != 0 {
		t.Errorf("after Reset, Snapshot() = %+v", s)
	}
}
