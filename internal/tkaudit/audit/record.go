// Package audit owns the run's single durable artifact: the ordered,
// append-only audit record, and the pipeline that fills it. The record is
// created at run start, appended to by every goal, and sealed at run end;
// there is no process-wide log state — whoever starts a run owns its
// record.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Verdict is a goal outcome.
type Verdict string

const (
	// VerdictOK marks a goal that passed.
	VerdictOK Verdict = "OK"
	// VerdictFail marks a goal that failed, hard or soft.
	VerdictFail Verdict = "FAIL"
)

// ErrRecordSealed is returned on any append to a sealed record.
var ErrRecordSealed = errors.New("audit record is sealed")

// Entry is one goal's audit line.
type Entry struct {
	GoalID    string         `json:"goal_id"`
	Inputs    map[string]any `json:"inputs"`
	Outputs   map[string]any `json:"outputs"`
	Verdict   Verdict        `json:"verdict"`
	Detail    string         `json:"detail"`
	Elapsed   time.Duration  `json:"elapsed_ns"`
	Timestamp time.Time      `json:"timestamp"`
}

// Record is the append-only list of goal entries for one audit run.
// Entries are appended in strict goal order and the record is sealed
// exactly once; the seal digest commits to every entry.
type Record struct {
	RunID     string
	StartedAt time.Time

	entries []Entry
	sealed  bool
	digest  string
}

// NewRecord creates an empty record with a fresh run ID.
func NewRecord() *Record {
	return &Record{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
}

// Append adds one entry. Appending to a sealed record is a bug in the
// caller and fails loudly.
func (r *Record) Append(e Entry) error {
	if r.sealed {
		return ErrRecordSealed
	}
	if e.GoalID == "" {
		return fmt.Errorf("audit entry needs a goal id")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	r.entries = append(r.entries, e)
	return nil
}

// Seal makes the record read-only and returns its commitment digest: the
// SHA-256 of the canonical JSON entry list. Sealing twice returns the same
// digest.
func (r *Record) Seal() (string, error) {
	if r.sealed {
		return r.digest, nil
	}

	payload, err := json.Marshal(r.entries)
	if err != nil {
		return "", fmt.Errorf("failed to serialize audit record: %w", err)
	}
	sum := sha256.Sum256(payload)
	r.digest = hex.EncodeToString(sum[:])
	r.sealed = true
	return r.digest, nil
}

// Sealed reports whether the record has been sealed.
func (r *Record) Sealed() bool {
	return r.sealed
}

// Digest returns the seal digest, empty before sealing.
func (r *Record) Digest() string {
	return r.digest
}

// Entries returns a copy of the entry list.
func (r *Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// AllOK reports whether every recorded goal passed.
func (r *Record) AllOK() bool {
	for _, e := range r.entries {
		if e.Verdict != VerdictOK {
			return false
		}
	}
	return len(r.entries) > 0
}

// FailedGoals returns the IDs of goals that did not pass, in order.
func (r *Record) FailedGoals() []string {
	var failed []string
	for _, e := range r.entries {
		if e.Verdict != VerdictOK {
			failed = append(failed, e.GoalID)
		}
	}
	return failed
}

// Terminal banner fragments. A run's record ends with the completion
// banner if and only if every goal's verdict is OK.
const (
	completeBanner  = "TETRAKLEIN FEASIBILITY AUDIT COMPLETE"
	abortBanner     = "TETRAKLEIN FEASIBILITY AUDIT ABORTED AT"
	shortfallBanner = "TETRAKLEIN FEASIBILITY AUDIT FINISHED WITH SHORTFALLS:"
)

// TerminalLine returns the record's terminal summary line. aborted names
// the goal a hard failure halted the run at, empty when no hard failure
// occurred.
func (r *Record) TerminalLine(aborted string) string {
	if aborted != "" {
		return fmt.Sprintf("%s %s", abortBanner, aborted)
	}
	if r.AllOK() {
		return completeBanner
	}
	return fmt.Sprintf("%s %s", shortfallBanner, strings.Join(r.FailedGoals(), ", "))
}

// WriteJSONLines writes the record as one JSON object per entry followed
// by the terminal line.
func (r *Record) WriteJSONLines(w io.Writer, aborted string) error {
	enc := json.NewEncoder(w)
	for _, e := range r.entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode audit entry %s: %w", e.GoalID, err)
		}
	}
	if _, err := fmt.Fprintln(w, r.TerminalLine(aborted)); err != nil {
		return err
	}
	return nil
}

// WriteFile persists the record to a file.
func (r *Record) WriteFile(path, aborted string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audit record file: %w", err)
	}
	defer f.Close()

	if err := r.WriteJSONLines(f, aborted); err != nil {
		return err
	}
	return f.Sync()
}
