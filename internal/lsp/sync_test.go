package lsp

import (
	"testing"
	"time"
)

func TestSyncStateDebounce(t *testing.T) {
	base := time.Unix(1000, 0)
	s := NewSyncState(200 * time.Millisecond)

	if s.Fire(base) {
		t.Error("clean state must not fire")
	}

	s.MarkDirty(base)
	if s.Fire(base.Add(100 * time.Millisecond)) {
		t.Error("fired before debounce elapsed")
	}
	if !s.Fire(base.Add(201 * time.Millisecond)) {
		t.Error("did not fire after debounce elapsed")
	}
	if s.Fire(base.Add(300 * time.Millisecond)) {
		t.Error("fired twice for one dirty mark")
	}
}

func TestSyncStateDirtyRestartsTimer(t *testing.T) {
	base := time.Unix(1000, 0)
	s := NewSyncState(200 * time.Millisecond)

	s.MarkDirty(base)
	s.MarkDirty(base.Add(150 * time.Millisecond))
	if s.Fire(base.Add(201 * time.Millisecond)) {
		t.Error("second MarkDirty must push the deadline out")
	}
	if !s.Fire(base.Add(351 * time.Millisecond)) {
		t.Error("did not fire after the restarted debounce")
	}
}

func TestRenameStateFlow(t *testing.T) {
	var s RenameState
	pos := Position{Line: 3, Character: 7}

	s.StartPrepare(pos)
	if !s.Preparing || s.Visible {
		t.Fatalf("after StartPrepare: %+v", s)
	}

	rng := Range{Start: Position{Line: 3, Character: 4}, End: Position{Line: 3, Character: 10}}
	s.OnPrepareResponse(rng, "oldName")
	if !s.Visible || s.Preparing || s.NewName != "oldName" {
		t.Fatalf("after OnPrepareResponse: %+v", s)
	}
	if s.CanSubmit() {
		t.Error("unchanged name must not be submittable")
	}

	s.NewName = "newName"
	if !s.CanSubmit() {
		t.Error("changed name must be submittable")
	}

	s.Reset()
	if s.Visible || s.Range != nil || s.NewName != "" {
		t.Errorf("after Reset: %+v", s)
	}
}

func TestDocumentHighlightDebounce(t *testing.T) {
	base := time.Unix(0, 0)
	var s DocumentHighlightState

	s.Arm(10, base, 150*time.Millisecond)
	if s.Fire(base.Add(100 * time.Millisecond)) {
		t.Error("fired early")
	}
	if !s.Fire(base.Add(151 * time.Millisecond)) {
		t.Error("did not fire after delay")
	}
	if s.Fire(base.Add(200 * time.Millisecond)) {
		t.Error("fired twice")
	}
}
