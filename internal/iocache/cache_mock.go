package iocache

import (
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetCacheStore implements the CacheManager interface.
func (m *MockCacheManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetAnalysisStore implements the CacheManager interface.
func (m *MockCacheManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// BeginAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) EndAnalysis(analysisID int64, endTime time.Time, totalPatents, totalSpikes int) error {
	args := m.Called(analysisID, endTime, totalPatents, totalSpikes)
	return args.Error(0)
}

// RecordSpikeAlert implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordSpikeAlert(analysisID int64, company string, analysisTime time.Time, alert schema.SpikeAlert) error {
	args := m.Called(analysisID, company, analysisTime, alert)
	return args.Error(0)
}

// RecordSyncDocument implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordSyncDocument(analysisID int64, collection string, payload []byte, createdAt time.Time) (string, error) {
	args := m.Called(analysisID, collection, payload, createdAt)
	return args.String(0), args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AnalysisStatus), args.Error(1)
}

// GetAllAnalysisRuns implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.AnalysisRunRecord)
	return records, args.Error(1)
}

// GetAllSpikeAlerts implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllSpikeAlerts() ([]schema.SpikeAlertRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.SpikeAlertRecord)
	return records, args.Error(1)
}

// GetAllSyncDocuments implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllSyncDocuments() ([]schema.SyncDocumentRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.SyncDocumentRecord)
	return records, args.Error(1)
}
