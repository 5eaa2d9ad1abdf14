package blob

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir() error: %v", err)
	}
	return d
}

func TestPutGetDelete(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()

	if err := d.Put(ctx, "articles/published.json", []byte(`[]`), "application/json"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := d.Get(ctx, "articles/published.json")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("Get() = %q, want %q", got, `[]`)
	}

	if err := d.Delete(ctx, "articles/published.json"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := d.Get(ctx, "articles/published.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestGetMissing(t *testing.T) {
	d := newTestDir(t)
	if _, err := d.Get(context.Background(), "nope.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingIsNoError(t *testing.T) {
	d := newTestDir(t)
	if err := d.Delete(context.Background(), "nope.json"); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}
}

func TestListByPrefix(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()

	for _, key := range []string{"comments/a.json", "comments/b.json", "reviews/x.json"} {
		if err := d.Put(ctx, key, []byte("{}"), "application/json"); err != nil {
			t.Fatalf("Put(%s) error: %v", key, err)
		}
	}

	res, err := d.List(ctx, "comments/", "")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(res.Objects) != 2 {
		t.Fatalf("List() returned %d objects, want 2", len(res.Objects))
	}
	if res.Objects[0].Key != "comments/a.json" || res.Objects[1].Key != "comments/b.json" {
		t.Errorf("List() keys = %v", res.Objects)
	}
	if res.Truncated {
		t.Error("List() truncated, want complete page")
	}
}

func TestListPaginates(t *testing.T) {
	d := newTestDir(t)
	d.pageSize = 3
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		key := fmt.Sprintf("comments/%02d.json", i)
		if err := d.Put(ctx, key, []byte("{}"), "application/json"); err != nil {
			t.Fatalf("Put(%s) error: %v", key, err)
		}
	}

	var keys []string
	cursor := ""
	for {
		res, err := d.List(ctx, "comments/", cursor)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		for _, o := range res.Objects {
			keys = append(keys, o.Key)
		}
		if !res.Truncated {
			break
		}
		cursor = res.Cursor
	}

	if len(keys) != 7 {
		t.Errorf("paginated listing returned %d keys, want 7: %v", len(keys), keys)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()
	for _, key := range []string{"../outside.json", "/abs.json", "."} {
		if err := d.Put(ctx, key, []byte("x"), ""); err == nil {
			t.Errorf("Put(%q) succeeded, want error", key)
		}
	}
}
