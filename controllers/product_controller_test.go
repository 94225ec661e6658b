package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBundleIDs(t *testing.T) {
	assert.Equal(t, []uint{1, 2, 3}, parseBundleIDs("1,2,3"))
	assert.Equal(t, []uint{4, 7}, parseBundleIDs(" 4 , 7 "))
	// blanks, zero, and junk entries are skipped
	assert.Equal(t, []uint{5}, parseBundleIDs("5,,0,abc"))
	assert.Empty(t, parseBundleIDs(""))
}

func TestBundlePrice(t *testing.T) {
	assert.Equal(t, int64(90000), bundlePrice(100000, 10))
	assert.Equal(t, int64(100000), bundlePrice(100000, 0))
	assert.Equal(t, int64(0), bundlePrice(100000, 100))
	// rounding stays in the customer's favor
	assert.Equal(t, int64(667), bundlePrice(1000, 33))
}

func TestSplitFeatures(t *testing.T) {
	features := splitFeatures("Garansi 30 hari\n\n  Akses penuh  \nSupport 24 jam")
	assert.Equal(t, []string{"Garansi 30 hari", "Akses penuh", "Support 24 jam"}, features)
	assert.Empty(t, splitFeatures(""))
}

func TestReportWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	start, end, ok := reportWindow("day", now)
	assert.True(t, ok)
	assert.Equal(t, 15, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 23, end.Hour())

	start, end, ok = reportWindow("week", now)
	assert.True(t, ok)
	assert.Equal(t, 9, start.Day())
	assert.Equal(t, 15, end.Day())

	_, _, ok = reportWindow("year", now)
	assert.False(t, ok)
}

func TestNewGatewayOrderID(t *testing.T) {
	id := newGatewayOrderID("DG")
	assert.Len(t, id, 15)
	assert.Equal(t, "DG-", id[:3])
	assert.NotEqual(t, id, newGatewayOrderID("DG"))
}

func TestKeySuffix(t *testing.T) {
	assert.Equal(t, "CDEF", keySuffix("PK-1234ABCDEF"))
	assert.Equal(t, "abc", keySuffix("abc"))
}
