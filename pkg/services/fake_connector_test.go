package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// fakeConnector is the in-memory datasource used across the service tests.
// Everything is keyed by FQN so scenarios read like fixtures.
type fakeConnector struct {
	mu sync.Mutex

	tables  []datasource.TableMetadata
	columns map[string][]datasource.ColumnMetadata

	// aggregates are returned by ProfileColumns; profileErrs are consumed
	// first, one per call, so transient-then-success sequences can be
	// scripted.
	aggregates  map[string]*datasource.TableAggregates
	profileErrs map[string][]error

	// combos key: fqn + "|" + comma-joined columns.
	combos    map[string]comboCount
	comboErrs map[string]error

	// orphans key: from column ref + ">" + to column ref.
	orphans    map[string]int64
	orphanErrs map[string]error

	listTablesErr  error
	listColumnsErr error

	listTablesCalls int
	profileCalls    int
	comboCalls      int
	orphanCalls     int
	reconnectCalls  int
}

type comboCount struct {
	distinct int64
	total    int64
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		columns:     make(map[string][]datasource.ColumnMetadata),
		aggregates:  make(map[string]*datasource.TableAggregates),
		profileErrs: make(map[string][]error),
		combos:      make(map[string]comboCount),
		comboErrs:   make(map[string]error),
		orphans:     make(map[string]int64),
		orphanErrs:  make(map[string]error),
	}
}

func (f *fakeConnector) addTable(meta datasource.TableMetadata, cols []datasource.ColumnMetadata) {
	f.tables = append(f.tables, meta)
	f.columns[meta.Ref().FQN()] = cols
}

func comboKey(ref models.TableRef, cols []string) string {
	key := ref.FQN() + "|"
	for i, c := range cols {
		if i > 0 {
			key += ","
		}
		key += c
	}
	return key
}

func orphanKey(from, to models.ColumnRef) string {
	return from.Table.FQN() + "." + from.Column + ">" + to.Table.FQN() + "." + to.Column
}

func (f *fakeConnector) ListTables(_ context.Context, _, _ string, includeViews bool) ([]datasource.TableMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listTablesCalls++
	if f.listTablesErr != nil {
		return nil, f.listTablesErr
	}
	var out []datasource.TableMetadata
	for _, meta := range f.tables {
		if meta.Kind == models.TableKindView && !includeViews {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

func (f *fakeConnector) ListColumns(_ context.Context, ref models.TableRef) ([]datasource.ColumnMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listColumnsErr != nil {
		return nil, f.listColumnsErr
	}
	cols, ok := f.columns[ref.FQN()]
	if !ok {
		return nil, fmt.Errorf("no columns registered for %s", ref.FQN())
	}
	return cols, nil
}

func (f *fakeConnector) ProfileColumns(_ context.Context, table models.TableRef, cols []datasource.ColumnMetadata, _ models.ReadStrategy, _ int) (*datasource.TableAggregates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++

	fqn := table.FQN()
	if errs := f.profileErrs[fqn]; len(errs) > 0 {
		err := errs[0]
		f.profileErrs[fqn] = errs[1:]
		return nil, err
	}
	if agg, ok := f.aggregates[fqn]; ok {
		return agg, nil
	}

	// Unregistered tables profile as empty.
	agg := &datasource.TableAggregates{Columns: make([]datasource.ColumnAggregate, len(cols))}
	for i, col := range cols {
		agg.Columns[i] = datasource.ColumnAggregate{ColumnName: col.Name}
	}
	return agg, nil
}

func (f *fakeConnector) DistinctCombinationCount(_ context.Context, table models.TableRef, cols []string, _ models.ReadStrategy) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comboCalls++

	key := comboKey(table, cols)
	if err, ok := f.comboErrs[key]; ok {
		return 0, 0, err
	}
	c := f.combos[key]
	return c.distinct, c.total, nil
}

func (f *fakeConnector) OrphanCount(_ context.Context, from, to models.ColumnRef, _ int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orphanCalls++

	key := orphanKey(from, to)
	if err, ok := f.orphanErrs[key]; ok {
		return 0, err
	}
	return f.orphans[key], nil
}

func (f *fakeConnector) Reconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnectCalls++
	return nil
}

func (f *fakeConnector) Close() error { return nil }

var _ datasource.Connector = (*fakeConnector)(nil)
