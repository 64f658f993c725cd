package upload_test

import (
	"testing"
	"time"

	"github.com/reecejunior/newrouteplanner/id"
	"github.com/reecejunior/newrouteplanner/upload"
)

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from upload.State
		to   upload.State
		want bool
	}{
		{upload.StateQueued, upload.StateProcessing, true},
		{upload.StateQueued, upload.StateCompleted, false},
		{upload.StateQueued, upload.StateFailed, false},
		{upload.StateProcessing, upload.StateCompleted, true},
		{upload.StateProcessing, upload.StateFailed, true},
		{upload.StateProcessing, upload.StateQueued, false},
		{upload.StateFailed, upload.StateQueued, true},
		{upload.StateFailed, upload.StateProcessing, false},
		{upload.StateCompleted, upload.StateQueued, false},
		{upload.StateCompleted, upload.StateProcessing, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestState_Terminal(t *testing.T) {
	tests := []struct {
		state upload.State
		want  bool
	}{
		{upload.StateQueued, false},
		{upload.StateProcessing, false},
		{upload.StateCompleted, true},
		{upload.StateFailed, true},
	}

	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestUpload_Snapshot(t *testing.T) {
	submitted := time.Now().UTC()
	u := &upload.Upload{
		ID:          id.NewUploadID(),
		State:       upload.StateCompleted,
		Addresses:   []string{"1 Main St", "2 Oak Ave"},
		RetryCount:  1,
		SubmittedAt: submitted,
	}

	s := u.Snapshot()
	if s.ID != u.ID {
		t.Errorf("snapshot ID = %v, want %v", s.ID, u.ID)
	}
	if s.State != upload.StateCompleted {
		t.Errorf("snapshot state = %v, want %v", s.State, upload.StateCompleted)
	}
	if !s.SubmittedAt.Equal(submitted) {
		t.Errorf("snapshot SubmittedAt = %v, want %v", s.SubmittedAt, submitted)
	}
	if len(s.Addresses) != 2 {
		t.Fatalf("snapshot addresses = %v, want 2 entries", s.Addresses)
	}

	// Mutating the snapshot must not reach back into the upload.
	s.Addresses[0] = "changed"
	if u.Addresses[0] != "1 Main St" {
		t.Error("snapshot shares address slice with upload")
	}
}

func TestUpload_Snapshot_NilAddresses(t *testing.T) {
	u := &upload.Upload{
		ID:    id.NewUploadID(),
		State: upload.StateQueued,
	}

	if got := u.Snapshot().Addresses; got != nil {
		t.Errorf("snapshot addresses = %v, want nil", got)
	}
}
