package serper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDateDottedGerman(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2020-01-03", NormalizeDate("3.1.2020", now))
	assert.Equal(t, "2023-12-24", NormalizeDate("24.12.2023", now))
	assert.Equal(t, "2021-05-07", NormalizeDate("07.05.2021", now))
}

func TestNormalizeDateISOPrefix(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2022-03-01", NormalizeDate("2022-03-01", now))
	assert.Equal(t, "2022-03-01", NormalizeDate("2022-03-01T08:30:00Z", now))
}

func TestNormalizeDateRelative(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-06-12", NormalizeDate("3 days ago", now))
	assert.Equal(t, "2024-06-14", NormalizeDate("1 day ago", now))
	assert.Equal(t, "2024-06-01", NormalizeDate("2 weeks ago", now))
	assert.Equal(t, "2024-02-15", NormalizeDate("4 months ago", now))
	assert.Equal(t, "2022-06-15", NormalizeDate("2 years ago", now))
	assert.Equal(t, "2024-06-15", NormalizeDate("5 hours ago", now))
}

func TestNormalizeDateFallbackLayouts(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2021-08-09", NormalizeDate("Aug 9, 2021", now))
	assert.Equal(t, "2021-08-09", NormalizeDate("9 Aug 2021", now))
	assert.Equal(t, "2021-08-09", NormalizeDate("2021/08/09", now))
}

func TestNormalizeDateUnparseable(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "", NormalizeDate("", now))
	assert.Equal(t, "", NormalizeDate("vor kurzem", now))
	assert.Equal(t, "", NormalizeDate("irgendwann 2020", now))
}
