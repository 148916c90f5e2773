package articles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-3-5", "2024-03-05"},
		{"2024/03/05", "2024-03-05"},
		{"2024/3/5", "2024-03-05"},
		{" 2024-12-31 ", "2024-12-31"},
		{"", ""},
		{"-", ""},
		{"   ", ""},
		{"2024-13-01", ""},
		{"not a date", ""},
		{"2024-03-05 10:30:00", "2024-03-05"},
		{"2024-03-05T10:30:00", "2024-03-05"},
		{"3/5/2024", "2024-03-05"},
		{"Mar 5, 2024", "2024-03-05"},
		{"March 5, 2024", "2024-03-05"},
		{"5 Mar 2024", "2024-03-05"},
		{"2024.03.05", "2024-03-05"},
		{"3rd of March 2024", "2024-03-03"},
		{"March 3rd, 2024", "2024-03-03"},
		{"twentieth of december 2023", "2023-12-20"},
		{"now", ""},
		{"today", ""},
		{"tomorrow", ""},
		{"next friday", ""},
		{"in 2 days", ""},
		{"March", ""},
		{"March 3rd", ""},
		{"March 2024", ""},
		{"3/11", ""},
		{"February 30th 2024", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestNormalizeDateZonedInstant(t *testing.T) {
	in := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	want := in.In(time.Local).Format("2006-01-02")
	assert.Equal(t, want, NormalizeDate(in.Format(time.RFC3339)))
}

func TestNormalizeDateDeterminism(t *testing.T) {
	assert.Equal(t, NormalizeDate("2024-3-5"), NormalizeDate("2024/03/05"))
	assert.Equal(t, "2024-03-05", NormalizeDate("2024-3-5"))
	assert.Equal(t, NormalizeDate(""), NormalizeDate("-"))
	assert.Equal(t, "", NormalizeDate(""))
	assert.Equal(t, NormalizeDate("March 3rd, 2024"), NormalizeDate("3rd of march 2024"))
}
