package main

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/preview"
)

func TestWatchReload(t *testing.T) {
	c := testConfig(t)
	in, err := loadInputs(context.Background(), c, dataFlags{}.resolve(c))
	require.NoError(t, err)

	server := preview.NewServer(newRenderer(c), in.boundaries, in.attributes, preview.Options{})
	before := server.Fingerprint()

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal)
	loads := make(chan struct{}, 2)
	done := make(chan struct{})

	attempt := 0
	go func() {
		watchReload(ctx, sig, server, func(context.Context) (*inputs, error) {
			defer func() { loads <- struct{}{} }()
			attempt++
			if attempt == 1 {
				return nil, errors.New("boom")
			}
			return &inputs{
				boundaries: in.boundaries[:1],
				attributes: []model.RegionAttributes{{Name: in.boundaries[0].Name, Population: 1}},
			}, nil
		})
		close(done)
	}()

	// A failed reload keeps the datasets.
	sig <- syscall.SIGHUP
	<-loads
	assert.Equal(t, before, server.Fingerprint())

	sig <- syscall.SIGHUP
	<-loads
	assert.Eventually(t, func() bool { return server.Fingerprint() != before }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watchReload did not stop after cancel")
	}
}
