package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodBucketsCounts(t *testing.T) {
	b := PeriodBuckets{
		"1개월":  {{ApplicationNumber: "1"}},
		"3개월":  {{ApplicationNumber: "1"}, {ApplicationNumber: "2"}},
		"12개월": {{ApplicationNumber: "1"}, {ApplicationNumber: "2"}, {ApplicationNumber: "3"}},
	}
	counts := b.Counts()
	assert.Equal(t, map[string]int{"1개월": 1, "3개월": 2, "6개월": 0, "12개월": 3}, counts)
}

func TestLookupCompany(t *testing.T) {
	c, ok := LookupCompany("어플라이드머티")
	assert.True(t, ok)
	assert.Equal(t, "어플라이드머티어리얼즈", c.Query)

	c, ok = LookupCompany("SK Hynix")
	assert.True(t, ok)
	assert.Equal(t, "SK하이닉스", c.Name)

	c, ok = LookupCompany("원익IPS")
	assert.False(t, ok)
	assert.Equal(t, "원익IPS", c.Query)
}

func TestRegistryIsComplete(t *testing.T) {
	assert.Len(t, Companies, 10)
	for _, name := range DefaultCompanies {
		_, ok := LookupCompany(name)
		assert.True(t, ok, name)
	}
}
