package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (m *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	m.job = job
	return nil
}

func (m *manualDriver) Stop(context.Context) error {
	m.stopped = true
	return nil
}

func TestSchedulerRefreshesStandingTopics(t *testing.T) {
	t.Parallel()

	f := newFixture(&stubSearch{results: threeResults}, &stubGenerator{text: scenarioADocument}, time.Second)
	driver := &manualDriver{}
	s := NewScheduler(driver, f.pipeline, []string{"Example Policy X", "Other topic"}, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	assert.Equal(t, 2, f.generator.calls)

	list, err := f.pipeline.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutTopicsDoesNotStart(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	s := NewScheduler(driver, nil, nil, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.Nil(t, driver.job)
}
