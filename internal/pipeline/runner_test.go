package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published [][]string
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, paths []string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, paths)
	return nil
}

func TestRunnerRunsStagesInOrder(t *testing.T) {
	var order []string
	stage := func(name string, artifacts ...string) Stage {
		return NewStage(name, func(ctx context.Context) ([]string, error) {
			order = append(order, name)
			return artifacts, nil
		})
	}

	publisher := &recordingPublisher{}
	runner := NewRunner(WithRunID("run-7"), WithPublisher(publisher))

	report, err := runner.Run(context.Background(),
		stage("ingest", "a.xlsx"), stage("clean", "b.csv", "c.txt"), stage("enrich", "d.csv"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ingest", "clean", "enrich"}, order)
	assert.Equal(t, "run-7", report.RunID)
	require.Len(t, report.Stages, 3)
	assert.Equal(t, []string{"b.csv", "c.txt"}, report.Stages[1].Artifacts)
	assert.Equal(t, [][]string{{"a.xlsx"}, {"b.csv", "c.txt"}, {"d.csv"}}, publisher.published)
}

func TestRunnerStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("input missing")
	ran := false
	runner := NewRunner(WithRunID("run-8"))

	report, err := runner.Run(context.Background(),
		NewStage("ingest", func(ctx context.Context) ([]string, error) { return nil, nil }),
		NewStage("clean", func(ctx context.Context) ([]string, error) { return nil, boom }),
		NewStage("enrich", func(ctx context.Context) ([]string, error) { ran = true; return nil, nil }),
	)

	require.Error(t, err)
	assert.False(t, ran)
	assert.ErrorIs(t, err, boom)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "run-8", stageErr.Run)
	assert.Equal(t, "clean", stageErr.Stage)
	assert.Equal(t, "run run-8: stage clean: execute: input missing", err.Error())
	assert.Len(t, report.Stages, 1)
}

func TestRunnerReportsPublishFailure(t *testing.T) {
	boom := errors.New("bucket unavailable")
	runner := NewRunner(WithPublisher(&recordingPublisher{err: boom}))

	_, err := runner.Run(context.Background(),
		NewStage("ingest", func(ctx context.Context) ([]string, error) { return []string{"a"}, nil }))

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "publish", stageErr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestRunnerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner().Run(ctx,
		NewStage("ingest", func(ctx context.Context) ([]string, error) { return nil, nil }))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerGeneratesUUID(t *testing.T) {
	_, err := uuid.Parse(NewRunner().RunID())
	assert.NoError(t, err)
}
