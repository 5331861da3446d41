package service

import (
	"context"
	"sync"

	"github.com/garyjia/erp-forms/internal/domain/entity"
)

type mockRecordRepo struct {
	mu         sync.Mutex
	records    map[int64]*entity.Record
	nextID     int64
	createFunc func(ctx context.Context, record *entity.Record) error
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[int64]*entity.Record)}
}

func (m *mockRecordRepo) Create(ctx context.Context, record *entity.Record) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	record.ID = m.nextID
	stored := *record
	m.records[record.ID] = &stored
	return nil
}

func (m *mockRecordRepo) Update(ctx context.Context, record *entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *record
	m.records[record.ID] = &stored
	return nil
}

func (m *mockRecordRepo) GetByID(ctx context.Context, id int64) (*entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok {
		out := *r
		return &out, nil
	}
	return nil, nil
}

func (m *mockRecordRepo) ListByForm(ctx context.Context, formName string, limit, offset int) ([]*entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Record
	for id := m.nextID; id > 0; id-- {
		if r, ok := m.records[id]; ok && r.FormName == formName {
			out = append(out, r)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRecordRepo) CountByForm(ctx context.Context, formName string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.FormName == formName {
			n++
		}
	}
	return n, nil
}

type mockReferenceRepo struct {
	items    map[string][]*entity.ReferenceItem
	listFunc func(ctx context.Context, kind, query string, limit int) ([]*entity.ReferenceItem, error)
}

func (m *mockReferenceRepo) ListByKind(ctx context.Context, kind, query string, limit int) ([]*entity.ReferenceItem, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, kind, query, limit)
	}
	return m.items[kind], nil
}

func (m *mockReferenceRepo) Kinds(ctx context.Context) ([]string, error) {
	var kinds []string
	for k := range m.items {
		kinds = append(kinds, k)
	}
	return kinds, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func seededReferenceRepo() *mockReferenceRepo {
	return &mockReferenceRepo{items: map[string][]*entity.ReferenceItem{
		entity.RefCustomers: {
			{ID: 1, Kind: entity.RefCustomers, Code: "CUST-001", Label: "Bank of Kigali", Active: true},
			{ID: 2, Kind: entity.RefCustomers, Code: "CUST-002", Label: "Kigali Heights Ltd", Active: true},
		},
		entity.RefProjects: {
			{ID: 3, Kind: entity.RefProjects, Code: "PRJ-001", Label: "Head office guarding", Active: true},
		},
		entity.RefEmployees: {
			{ID: 4, Kind: entity.RefEmployees, Code: "EMP-001", Label: "Jean Mugabo", Active: true},
		},
	}}
}
