package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceService_Lookup(t *testing.T) {
	ctx := context.Background()
	svc := NewReferenceService(seededReferenceRepo(), &mockLogger{})

	l, err := svc.Lookup(ctx, entity.RefCustomers, "")
	require.NoError(t, err)
	assert.False(t, l.Loading)
	assert.Equal(t, []form.Choice{
		{Value: "CUST-001", Label: "Bank of Kigali"},
		{Value: "CUST-002", Label: "Kigali Heights Ltd"},
	}, l.Items)

	l, err = svc.Lookup(ctx, entity.RefDepartments, "")
	require.NoError(t, err)
	assert.Empty(t, l.Items)

	_, err = svc.Lookup(ctx, "vehicles", "")
	assert.ErrorIs(t, err, ErrUnknownReference)

	assert.Contains(t, svc.Kinds(), entity.RefAccounts)
}

func TestReferenceService_LookupIsNotCapped(t *testing.T) {
	var limits []int
	all := make([]*entity.ReferenceItem, 0, 250)
	for i := 1; i <= 250; i++ {
		all = append(all, &entity.ReferenceItem{Kind: entity.RefCustomers, Code: fmt.Sprintf("CUST-%03d", i)})
	}
	repo := &mockReferenceRepo{listFunc: func(ctx context.Context, kind, query string, limit int) ([]*entity.ReferenceItem, error) {
		limits = append(limits, limit)
		if limit > 0 && limit < len(all) {
			return all[:limit], nil
		}
		return all, nil
	}}
	svc := NewReferenceService(repo, &mockLogger{})

	l, err := svc.Lookup(context.Background(), entity.RefCustomers, "")
	require.NoError(t, err)
	assert.Len(t, l.Items, 250)
	assert.True(t, l.Has("CUST-250"), "validation must see codes past the search limit")

	l, err = svc.Lookup(context.Background(), entity.RefCustomers, "CUST")
	require.NoError(t, err)
	assert.Len(t, l.Items, searchLimit)
	assert.Equal(t, []int{0, searchLimit}, limits)
}

func TestReferenceService_LookupFailure(t *testing.T) {
	repo := &mockReferenceRepo{listFunc: func(ctx context.Context, kind, query string, limit int) ([]*entity.ReferenceItem, error) {
		return nil, errors.New("database is locked")
	}}
	svc := NewReferenceService(repo, &mockLogger{})

	_, err := svc.Lookup(context.Background(), entity.RefCustomers, "")
	assert.ErrorContains(t, err, "database is locked")
}

func TestReferenceService_SharedFetch(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	repo := &mockReferenceRepo{listFunc: func(ctx context.Context, kind, query string, limit int) ([]*entity.ReferenceItem, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return []*entity.ReferenceItem{{Kind: kind, Code: "EMP-001", Label: "Alice Uwase"}}, nil
	}}
	svc := NewReferenceService(repo, &mockLogger{})

	const callers = 5
	results := make([]form.Lookup, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.Lookup(context.Background(), entity.RefEmployees, "")
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Lookup(context.Background(), entity.RefEmployees, "")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, l := range results {
		require.Len(t, l.Items, 1)
		assert.Equal(t, "EMP-001", l.Items[0].Value)
	}

	results[0].Items[0].Label = "changed"
	assert.Equal(t, "Alice Uwase", results[1].Items[0].Label)
}
