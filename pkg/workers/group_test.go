package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	name string
	err  error
}

func (f *fakeWorker) Name() string { return f.name }

func (f *fakeWorker) Start(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}

func TestGroupStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	g := Group{&fakeWorker{name: "web_server"}, &fakeWorker{name: "broken", err: boom}}

	err := g.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken: boom")
}

func TestGroupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	g := Group{&fakeWorker{name: "a"}, &fakeWorker{name: "b"}}
	assert.NoError(t, g.Start(ctx))
}
