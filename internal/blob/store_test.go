package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	return map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			info, err := store.Put(ctx, "segments/a.json", strings.NewReader(`{"n":1}`), PutOptions{
				ContentType: "application/json",
				Metadata:    map[string]string{"events": "1"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Key != "segments/a.json" || info.Size != 7 {
				t.Fatalf("unexpected info %+v", info)
			}

			// Segments are write-once.
			if _, err := store.Put(ctx, "segments/a.json", strings.NewReader("x"), PutOptions{}); err == nil {
				t.Fatalf("second put on the same key must fail")
			}

			got, rc, err := store.Get(ctx, "segments/a.json")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			body, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil || string(body) != `{"n":1}` {
				t.Fatalf("content round trip wrong: %q (%v)", body, err)
			}
			if got.ContentType != "application/json" || got.Metadata["events"] != "1" {
				t.Fatalf("metadata round trip wrong: %+v", got)
			}

			head, err := store.Head(ctx, "segments/a.json")
			if err != nil || head.Size != 7 {
				t.Fatalf("head wrong: %+v (%v)", head, err)
			}

			if _, err := store.Put(ctx, "segments/b.json", strings.NewReader("{}"), PutOptions{}); err != nil {
				t.Fatalf("put b: %v", err)
			}
			if _, err := store.Put(ctx, "other/c.json", strings.NewReader("{}"), PutOptions{}); err != nil {
				t.Fatalf("put c: %v", err)
			}
			infos, err := store.List(ctx, "segments/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 || infos[0].Key != "segments/a.json" || infos[1].Key != "segments/b.json" {
				t.Fatalf("list wrong: %+v", infos)
			}

			existed, err := store.Delete(ctx, "segments/a.json")
			if err != nil || !existed {
				t.Fatalf("delete: %v existed=%v", err, existed)
			}
			existed, err = store.Delete(ctx, "segments/a.json")
			if err != nil || existed {
				t.Fatalf("double delete must report missing: %v existed=%v", err, existed)
			}
			if _, _, err := store.Get(ctx, "segments/a.json"); err == nil {
				t.Fatalf("get after delete must fail")
			}
		})
	}
}

func TestFilesystemRejectsHostileKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", " ", "../escape", "/abs/path", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	ctx := context.Background()
	t.Setenv("CUECORE_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %s", store.Driver())
	}

	t.Setenv("CUECORE_BLOB_DRIVER", "fs")
	t.Setenv("CUECORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}

	t.Setenv("CUECORE_BLOB_DRIVER", "bogus")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("unknown driver must fail")
	}
}
