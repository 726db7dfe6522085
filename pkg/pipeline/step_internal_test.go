package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-vessel/pkg/pipeline/model"
)

func TestRunEachDefaultsConcurrency(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		concurrent int
		want       int
	}{
		"zero":     {concurrent: 0, want: 1},
		"negative": {concurrent: -3, want: 1},
		"kept":     {concurrent: 4, want: 4},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pipe := &Pipeline{}
			details := &model.StepInfo{Name: "each", Concurrent: tc.concurrent}
			err := runEach(context.Background(), pipe, details, []int{1, 2}, func(ctx context.Context, i int) error {
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, details.Concurrent)
		})
	}
}

func TestSequentialEachFnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(testContext(t))
	pipe := &Pipeline{}
	details := &model.StepInfo{Name: "each", Concurrent: 1}

	got := []int{}
	err := sequentialEachFn(ctx, pipe, details, []int{0, 1, 2, 3}, func(ctx context.Context, i int) error {
		got = append(got, i)
		if i == 1 {
			cancel()
		}

		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{0, 1}, got)
}

func TestConcurrentEachFnStopsOnError(t *testing.T) {
	t.Parallel()

	pipe := &Pipeline{}
	details := &model.StepInfo{Name: "each", Concurrent: 2}

	err := concurrentEachFn(testContext(t), pipe, details, []int{0, 1, 2, 3, 4, 5}, func(ctx context.Context, i int) error {
		if i == 0 {
			return assert.AnError
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
			return nil
		}
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestPrepareStepLinksPreviousStep(t *testing.T) {
	t.Parallel()

	rec := &recordingOption{}
	pipe, err := New(rec)
	require.NoError(t, err)

	_, err = AddStep(pipe, "stage0", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	_, err = AddStep(pipe, "stage1", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []string{"start->stage0", "stage0->stage1"}, rec.links)
}
