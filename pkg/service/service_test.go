package service_test

import (
	"errors"
	"testing"

	"github.com/plgd-dev/assethub/pkg/service"
	"github.com/stretchr/testify/require"
)

type blockingService struct {
	stop     chan struct{}
	closeErr error
}

func newBlockingService(closeErr error) *blockingService {
	return &blockingService{stop: make(chan struct{}), closeErr: closeErr}
}

func (s *blockingService) Serve() error {
	<-s.stop
	return nil
}

func (s *blockingService) Close() error {
	close(s.stop)
	return s.closeErr
}

func TestServiceServeClose(t *testing.T) {
	closed := false
	s := service.New(newBlockingService(nil))
	s.Add(newBlockingService(nil))
	s.AddCloseFunc(func() { closed = true })
	done := make(chan error, 1)
	go func() { done <- s.Serve() }()
	require.NoError(t, s.Close())
	require.NoError(t, <-done)
	require.True(t, closed)
}

func TestServiceCloseErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	s := service.New(newBlockingService(errA), newBlockingService(errB))
	done := make(chan error, 1)
	go func() { done <- s.Serve() }()
	require.NoError(t, s.Close())
	err := <-done
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}
