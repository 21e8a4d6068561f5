package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingGoal(id string) Goal {
	return Goal{
		ID: id,
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			return GoalResult{Detail: id + " passed"}, nil
		},
	}
}

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.Error(t, err, "empty goal list must be rejected")

	_, err = NewPipeline([]Goal{{ID: "", Run: nil}})
	assert.Error(t, err, "goals need an id and a run function")

	_, err = NewPipeline([]Goal{passingGoal("a"), passingGoal("a")})
	assert.Error(t, err, "duplicate goal ids must be rejected")
}

func TestPipelineRunAllPass(t *testing.T) {
	p, err := NewPipeline([]Goal{passingGoal("a"), passingGoal("b"), passingGoal("c")})
	require.NoError(t, err)

	record, aborted, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, aborted)
	assert.True(t, record.Sealed())
	assert.True(t, record.AllOK())
	require.Len(t, record.Entries(), 3)
	assert.Equal(t, "TETRAKLEIN FEASIBILITY AUDIT COMPLETE", record.TerminalLine(aborted))
}

func TestPipelineSequentialState(t *testing.T) {
	var order []string
	goals := []Goal{
		{ID: "first", Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			order = append(order, "first")
			st.MaxDegree = 2
			return GoalResult{}, nil
		}},
		{ID: "second", Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			order = append(order, "second")
			// State written by the earlier goal must be visible here.
			assert.Equal(t, 2, st.MaxDegree)
			return GoalResult{}, nil
		}},
	}

	p, err := NewPipeline(goals)
	require.NoError(t, err)
	_, _, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPipelineHardFailureAborts(t *testing.T) {
	boom := errors.New("degree exceeded")
	downstreamRan := false
	goals := []Goal{
		passingGoal("a"),
		{ID: "b", Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			return GoalResult{}, boom
		}},
		{ID: "c", Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			downstreamRan = true
			return GoalResult{}, nil
		}},
	}

	p, err := NewPipeline(goals)
	require.NoError(t, err)
	record, aborted, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "b", aborted)
	assert.False(t, downstreamRan, "no goal may run after a hard failure")

	require.Len(t, record.Entries(), 2)
	last := record.Entries()[1]
	assert.Equal(t, VerdictFail, last.Verdict)
	assert.Equal(t, "degree exceeded", last.Detail)
	assert.True(t, record.Sealed())
	assert.Contains(t, record.TerminalLine(aborted), "ABORTED AT b")
}

func TestPipelineSoftFailureContinues(t *testing.T) {
	goals := []Goal{
		passingGoal("a"),
		{ID: "prover-budget", Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			return GoalResult{SoftFail: true, Detail: "rate not achievable"}, nil
		}},
		passingGoal("c"),
	}

	p, err := NewPipeline(goals)
	require.NoError(t, err)
	record, aborted, err := p.Run(context.Background())

	require.NoError(t, err, "soft shortfalls must not abort the run")
	assert.Empty(t, aborted)
	require.Len(t, record.Entries(), 3, "downstream goals still run")
	assert.Equal(t, VerdictFail, record.Entries()[1].Verdict)
	assert.Equal(t, []string{"prover-budget"}, record.FailedGoals())
	assert.Equal(t,
		"TETRAKLEIN FEASIBILITY AUDIT FINISHED WITH SHORTFALLS: prover-budget",
		record.TerminalLine(aborted))
}

func TestPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := NewPipeline([]Goal{passingGoal("a")})
	require.NoError(t, err)

	record, aborted, err := p.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, "a", aborted)
	assert.True(t, record.Sealed())
	assert.Empty(t, record.Entries())
}

func TestPipelineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	goals := []Goal{
		passingGoal("a"),
		{ID: "b", Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			return GoalResult{SoftFail: true}, nil
		}},
	}

	p, err := NewPipeline(goals, WithMetrics(reg))
	require.NoError(t, err)
	_, _, err = p.Run(context.Background())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["tkaudit_goal_duration_seconds"])
	assert.True(t, names["tkaudit_goal_verdicts_total"])
}

func TestPipelineEntryPerGoal(t *testing.T) {
	const n = 5
	var goals []Goal
	for i := 0; i < n; i++ {
		goals = append(goals, passingGoal(fmt.Sprintf("goal-%d", i)))
	}

	p, err := NewPipeline(goals)
	require.NoError(t, err)
	record, _, err := p.Run(context.Background())
	require.NoError(t, err)

	entries := record.Entries()
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("goal-%d", i), e.GoalID)
		assert.Equal(t, VerdictOK, e.Verdict)
	}
}
