package sysstats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

type fakeProbe struct {
	calls atomic.Int64
	fail  bool
}

func (f *fakeProbe) Sample(context.Context) (model.SystemSnapshot, error) {
	n := f.calls.Add(1)
	if f.fail {
		return model.SystemSnapshot{}, errors.New("boom")
	}
	return model.SystemSnapshot{CPU: float64(n)}, nil
}

func TestSampler_LatestBeforeFirstSample(t *testing.T) {
	s := NewWithProbe(&fakeProbe{}, nil)
	_, ok := s.Latest()
	require.False(t, ok)

	require.NoError(t, s.Sample(context.Background()))
	snap, ok := s.Latest()
	require.True(t, ok)
	require.Equal(t, 1.0, snap.CPU)
}

func TestSampler_FailureKeepsPrevious(t *testing.T) {
	p := &fakeProbe{}
	s := NewWithProbe(p, nil)
	require.NoError(t, s.Sample(context.Background()))
	p.fail = true
	require.Error(t, s.Sample(context.Background()))

	snap, ok := s.Latest()
	require.True(t, ok)
	require.Equal(t, 1.0, snap.CPU)
}

func TestSampler_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	got := make(chan model.SystemSnapshot, 16)
	s := NewWithProbe(&fakeProbe{}, nil)
	s.OnSample(func(snap model.SystemSnapshot) {
		select {
		case got <- snap:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(2 * time.Second):
			t.Fatal("no sample")
		}
	}
	cancel()
	require.NoError(t, <-done)
}
