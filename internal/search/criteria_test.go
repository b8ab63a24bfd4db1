package search

import (
	"testing"
	"time"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/stretchr/testify/assert"
)

func int64ptr(v int64) *int64          { return &v }
func timeptr(v time.Time) *time.Time   { return &v }

func testPhoto(id, authorName string, size int64, uploaded time.Time, tags ...string) *models.Photo {
	return &models.Photo{
		PhotoID:        id,
		AuthorID:       "USER_" + authorName,
		AuthorName:     authorName,
		FileSize:       size,
		UploadDateTime: uploaded,
		Hashtags:       tags,
	}
}

// TestCriteria_Empty 空条件匹配一切
func TestCriteria_Empty(t *testing.T) {
	p := testPhoto("PHOTO_1", "alice", 100, time.Now(), "cat")
	assert.True(t, Criteria{}.Matches(p))
	assert.True(t, Criteria{}.IsEmpty())
}

// TestCriteria_Hashtags_MatchAny 标签条件为任一命中
func TestCriteria_Hashtags_MatchAny(t *testing.T) {
	p := testPhoto("PHOTO_1", "alice", 100, time.Now(), "cat", "pet")

	assert.True(t, Criteria{Hashtags: []string{"cat"}}.Matches(p))
	assert.True(t, Criteria{Hashtags: []string{"dog", "pet"}}.Matches(p))
	assert.False(t, Criteria{Hashtags: []string{"dog", "bird"}}.Matches(p))
}

// TestCriteria_SizeBounds 大小边界为双端包含
func TestCriteria_SizeBounds(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		size int64
		c    Criteria
		want bool
	}{
		{"inside", 150, Criteria{MinSize: int64ptr(100), MaxSize: int64ptr(200)}, true},
		{"at min", 100, Criteria{MinSize: int64ptr(100), MaxSize: int64ptr(200)}, true},
		{"at max", 200, Criteria{MinSize: int64ptr(100), MaxSize: int64ptr(200)}, true},
		{"below", 99, Criteria{MinSize: int64ptr(100)}, false},
		{"above", 201, Criteria{MaxSize: int64ptr(200)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPhoto("PHOTO_1", "alice", tt.size, now)
			assert.Equal(t, tt.want, tt.c.Matches(p))
		})
	}
}

// TestCriteria_DateBounds 日期边界为双端包含
func TestCriteria_DateBounds(t *testing.T) {
	day := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	p := testPhoto("PHOTO_1", "alice", 100, day)

	assert.True(t, Criteria{StartDate: timeptr(day), EndDate: timeptr(day)}.Matches(p))
	assert.True(t, Criteria{StartDate: timeptr(day.Add(-time.Hour))}.Matches(p))
	assert.False(t, Criteria{StartDate: timeptr(day.Add(time.Second))}.Matches(p))
	assert.False(t, Criteria{EndDate: timeptr(day.Add(-time.Second))}.Matches(p))
}

// TestCriteria_AuthorCaseInsensitive 作者名大小写不敏感精确匹配
func TestCriteria_AuthorCaseInsensitive(t *testing.T) {
	alice := testPhoto("PHOTO_1", "Alice", 100, time.Now())
	bob := testPhoto("PHOTO_2", "bob", 100, time.Now())

	c := Criteria{Author: "alice"}
	assert.True(t, c.Matches(alice))
	assert.False(t, c.Matches(bob))

	// 精确匹配，不是前缀匹配
	assert.False(t, Criteria{Author: "ali"}.Matches(alice))
}

// TestCriteria_AllSpecifiedMustHold 指定条件全部生效
func TestCriteria_AllSpecifiedMustHold(t *testing.T) {
	day := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	p := testPhoto("PHOTO_1", "alice", 150, day, "cat")

	c := Criteria{
		Hashtags: []string{"cat"},
		MinSize:  int64ptr(100),
		MaxSize:  int64ptr(200),
		Author:   "ALICE",
	}
	assert.True(t, c.Matches(p))

	c.MaxSize = int64ptr(120)
	assert.False(t, c.Matches(p))
}

// TestFilter 过滤保持输入顺序
func TestFilter(t *testing.T) {
	now := time.Now()
	photos := []*models.Photo{
		testPhoto("PHOTO_1", "Alice", 100, now, "x"),
		testPhoto("PHOTO_2", "bob", 150, now),
		testPhoto("PHOTO_3", "alice", 200, now, "x", "y"),
	}

	got := Filter(photos, Criteria{Author: "alice"})
	assert.Len(t, got, 2)
	assert.Equal(t, "PHOTO_1", got[0].PhotoID)
	assert.Equal(t, "PHOTO_3", got[1].PhotoID)

	got = Filter(photos, Criteria{Hashtags: []string{"x"}})
	assert.Len(t, got, 2)

	got = Filter(photos, Criteria{})
	assert.Len(t, got, 3)
}
