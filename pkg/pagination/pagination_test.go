package pagination

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 5: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected buffered limit 11, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	parsed, err := ParseCursor(EncodeCursor(cursor))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) || parsed.ID != cursor.ID {
		t.Fatalf("cursor mismatch %+v vs %+v", parsed, cursor)
	}

	if parsed, err := ParseCursor(" "); err != nil || parsed != nil {
		t.Fatalf("expected blank cursor to be nil, got %+v %v", parsed, err)
	}
	for _, bad := range []string{"not-base64!", EncodeCursor(cursor)[:4], "bm8tc2VwYXJhdG9y"} {
		if _, err := ParseCursor(bad); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("ParseCursor(%q) = %v, want ErrInvalidCursor", bad, err)
		}
	}
}

func TestBuildPage(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	now := time.Now().UTC()
	rows := []row{{uuid.New(), now}, {uuid.New(), now.Add(-time.Minute)}, {uuid.New(), now.Add(-2 * time.Minute)}}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page := BuildPage(rows, 2, cursorOf)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil || next == nil || next.ID != rows[1].id {
		t.Fatalf("expected cursor of second row, got %+v %v", next, err)
	}

	last := BuildPage(rows[:1], 2, cursorOf)
	if last.NextCursor != "" || len(last.Items) != 1 {
		t.Fatalf("expected final page without cursor, got %+v", last)
	}

	empty := BuildPage[row](nil, 2, cursorOf)
	if empty.Items == nil {
		t.Fatal("expected empty slice rather than nil")
	}
}

type pagedRow struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	Kind      string
	CreatedAt time.Time
}

func TestNewestWalksPagesWithTiedTimestamps(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&pagedRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	base := time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		row := pagedRow{ID: uuid.New(), Kind: "bonbon", CreatedAt: base.Add(time.Duration(i/2) * time.Minute)}
		if err := conn.Create(&row).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := conn.Create(&pagedRow{ID: uuid.New(), Kind: "bar", CreatedAt: base}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	cursorOf := func(r pagedRow) Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} }
	seen := map[uuid.UUID]bool{}
	params := Params{Limit: 2}
	for pages := 0; ; pages++ {
		if pages > 5 {
			t.Fatal("pagination did not terminate")
		}
		page, err := Newest(conn.Model(&pagedRow{}).Where("kind = ?", "bonbon"), params, cursorOf)
		if err != nil {
			t.Fatalf("page %d: %v", pages, err)
		}
		for _, item := range page.Items {
			if seen[item.ID] {
				t.Fatalf("row %s returned twice", item.ID)
			}
			seen[item.ID] = true
		}
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 bonbon rows, saw %d", len(seen))
	}

	if _, err := Newest(conn.Model(&pagedRow{}), Params{Cursor: "%%%"}, cursorOf); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected invalid cursor, got %v", err)
	}
}
