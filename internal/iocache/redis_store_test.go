package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisStoreTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	store *RedisCacheStore
}

func (s *RedisStoreTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.store = newRedisCacheStore(db, time.Hour)
}

func (s *RedisStoreTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *RedisStoreTestSuite) TestGetHit() {
	payload, err := json.Marshal(redisEntry{Value: []byte(`[1]`), Version: 1, Timestamp: 42})
	require.NoError(s.T(), err)
	s.mock.ExpectGet(redisKeyPrefix + "k1").SetVal(string(payload))

	value, version, ts, err := s.store.Get("k1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []byte(`[1]`), value)
	assert.Equal(s.T(), 1, version)
	assert.Equal(s.T(), int64(42), ts)
}

func (s *RedisStoreTestSuite) TestGetMissIsNoRows() {
	s.mock.ExpectGet(redisKeyPrefix + "k1").RedisNil()

	_, _, _, err := s.store.Get("k1")
	assert.ErrorIs(s.T(), err, sql.ErrNoRows)
}

func (s *RedisStoreTestSuite) TestGetCorruptEntry() {
	s.mock.ExpectGet(redisKeyPrefix + "k1").SetVal("not json")

	_, _, _, err := s.store.Get("k1")
	assert.Error(s.T(), err)
	assert.False(s.T(), errors.Is(err, sql.ErrNoRows))
}

func (s *RedisStoreTestSuite) TestSetUsesTTL() {
	payload, err := json.Marshal(redisEntry{Value: []byte(`[]`), Version: 2, Timestamp: 7})
	require.NoError(s.T(), err)
	s.mock.ExpectSet(redisKeyPrefix+"k1", payload, time.Hour).SetVal("OK")

	assert.NoError(s.T(), s.store.Set("k1", []byte(`[]`), 2, 7))
}

func (s *RedisStoreTestSuite) TestSetError() {
	payload, err := json.Marshal(redisEntry{Value: []byte(`[]`), Version: 1, Timestamp: 1})
	require.NoError(s.T(), err)
	s.mock.ExpectSet(redisKeyPrefix+"k1", payload, time.Hour).SetErr(errors.New("READONLY"))

	assert.Error(s.T(), s.store.Set("k1", []byte(`[]`), 1, 1))
}

func (s *RedisStoreTestSuite) TestGetStatusCountsAcrossCursor() {
	s.mock.ExpectScan(0, redisKeyPrefix+"*", 100).SetVal([]string{"a", "b"}, 9)
	s.mock.ExpectScan(9, redisKeyPrefix+"*", 100).SetVal([]string{"c"}, 0)

	status, err := s.store.GetStatus()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "redis", status.Backend)
	assert.True(s.T(), status.Connected)
	assert.Equal(s.T(), 3, status.TotalEntries)
}

func (s *RedisStoreTestSuite) TestClear() {
	keys := []string{redisKeyPrefix + "a", redisKeyPrefix + "b"}
	s.mock.ExpectScan(0, redisKeyPrefix+"*", 100).SetVal(keys, 0)
	s.mock.ExpectDel(keys...).SetVal(2)

	removed, err := s.store.Clear()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, removed)
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func TestNewRedisCacheStoreBadURL(t *testing.T) {
	_, err := NewRedisCacheStore("http://nope", time.Minute)
	assert.Error(t, err)
}
