package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketplace-delivery/internal/domain"
)

func TestNextInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		st   *domain.JobStatus
		want time.Duration
		done bool
	}{
		{"unknown", nil, IdleInterval, false},
		{"new", &domain.JobStatus{Status: "new"}, IdleInterval, false},
		{"active job", &domain.JobStatus{Status: "active"}, ActiveInterval, false},
		{"active point", &domain.JobStatus{Status: "available", Points: []domain.PointStatus{{Status: "finished"}, {Status: "active"}}}, ActiveInterval, false},
		{"completed", &domain.JobStatus{Status: "completed"}, 0, true},
		{"finished", &domain.JobStatus{Status: " Finished "}, 0, true},
		{"canceled with active point", &domain.JobStatus{Status: "canceled", Points: []domain.PointStatus{{Status: "active"}}}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				got, done := NextInterval(tt.st)
				require.Equal(t, tt.want, got)
				require.Equal(t, tt.done, done)
			}
		})
	}
}

func TestPoller_Run_KeepsLastGoodStatusOnError(t *testing.T) {
	t.Parallel()

	flaky := errors.New("provider timeout")
	gw := &scriptedGateway{
		statuses: []domain.JobStatus{
			{Status: "new"},
			{Status: "active"},
			{},
			{Status: "completed"},
		},
		errs: []error{nil, nil, flaky, nil},
	}
	after := &instantAfter{}

	var views []View
	err := NewPoller(gw, WithAfter(after.After)).Run(context.Background(), "42", func(v View) {
		views = append(views, v)
	})
	require.NoError(t, err)
	require.Len(t, views, 4)

	require.Equal(t, "new", views[0].Status.Status)
	require.Equal(t, "active", views[1].Status.Status)

	require.ErrorIs(t, views[2].Err, flaky)
	require.NotNil(t, views[2].Status)
	require.Equal(t, "active", views[2].Status.Status)
	require.Equal(t, ActiveInterval, views[2].Next)

	require.True(t, views[3].Done)
	require.NoError(t, views[3].Err)
	require.Equal(t, []time.Duration{IdleInterval, ActiveInterval, ActiveInterval}, after.Delays())
}

func TestPoller_Run_FirstPollFails(t *testing.T) {
	t.Parallel()

	gw := &scriptedGateway{
		statuses: []domain.JobStatus{{}, {Status: "canceled"}},
		errs:     []error{errors.New("boom")},
	}

	var views []View
	err := NewPoller(gw, WithAfter((&instantAfter{}).After)).Run(context.Background(), "1", func(v View) {
		views = append(views, v)
	})
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Nil(t, views[0].Status)
	require.Error(t, views[0].Err)
	require.True(t, views[1].Done)
}

func TestPoller_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	gw := &scriptedGateway{statuses: []domain.JobStatus{{Status: "active"}}}
	never := func(time.Duration) <-chan time.Time { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewPoller(gw, WithAfter(never)).Run(ctx, "1", func(View) { cancel() })
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	require.Equal(t, 1, gw.Calls())
}
