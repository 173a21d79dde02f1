package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"liveattendance/internal/attendance"
	"liveattendance/internal/db"
	"liveattendance/internal/store"
)

// TestMemory_Overwrites verifies a second write under the same key replaces the first.
func TestMemory_Overwrites(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	first := attendance.Record{Name: "Alice", Tanggal: "17-10-2026 08:00:00"}
	second := attendance.Record{Name: "Alice", Tanggal: "17-10-2026 09:30:00"}
	if err := m.Write(ctx, "log_attendance", "Alice", first); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(ctx, "log_attendance", "Alice", second); err != nil {
		t.Fatal(err)
	}

	got, ok := m.Get("log_attendance", "Alice")
	if !ok || got != second {
		t.Errorf("Get = %+v, %v; want %+v", got, ok, second)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	if m.Writes() != 2 {
		t.Errorf("Writes = %d, want 2", m.Writes())
	}

	if err := m.Delete(ctx, "log_attendance", "Alice"); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("log_attendance", "Alice"); ok {
		t.Error("record still present after Delete")
	}
}

// TestMemory_CancelledContext verifies nothing is written once the context is done.
func TestMemory_CancelledContext(t *testing.T) {
	m := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Write(ctx, "c", "k", attendance.Record{Name: "k"}); err == nil {
		t.Fatal("expected error on cancelled context")
	}
	if m.Len() != 0 {
		t.Error("record written despite cancelled context")
	}
}

func TestOpen_Drivers(t *testing.T) {
	s, err := store.Open(context.Background(), store.Config{Driver: "Memory"})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := s.(*store.Memory); !ok {
		t.Errorf("Open memory returned %T", s)
	}

	_, err = store.Open(context.Background(), store.Config{Driver: "mongo"})
	if !errors.Is(err, store.ErrUnknownDriver) {
		t.Errorf("err = %v, want ErrUnknownDriver", err)
	}

	_, err = store.Open(context.Background(), store.Config{Driver: "dynamodb"})
	if err == nil {
		t.Error("dynamodb without table should fail")
	}
}

// TestPostgres_Upsert runs against a real database when DATABASE_URL is set.
func TestPostgres_Upsert(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	sqlDB, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	p := store.NewPostgres(sqlDB)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	const coll = "log_attendance_test"
	defer p.Delete(ctx, coll, "Alice")

	for _, ts := range []string{"01-01-2026 08:00:00", "01-01-2026 08:05:00"} {
		if err := p.Write(ctx, coll, "Alice", attendance.Record{Name: "Alice", Tanggal: ts}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	rec, ok, err := p.Get(ctx, coll, "Alice")
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if rec.Tanggal != "01-01-2026 08:05:00" {
		t.Errorf("tanggal = %q, want the second write", rec.Tanggal)
	}
}

// TestFirebase_Write runs against a real realtime database when credentials are present.
func TestFirebase_Write(t *testing.T) {
	url := os.Getenv("FIREBASE_DATABASE_URL")
	if url == "" || os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("FIREBASE_DATABASE_URL or GOOGLE_APPLICATION_CREDENTIALS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	f, err := store.OpenFirebase(ctx, store.FirebaseConfig{
		DatabaseURL:     url,
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec := attendance.Record{Name: "go-test", Tanggal: time.Now().Format(attendance.TimestampLayout)}
	if err := f.Write(ctx, "log_attendance_test", "go-test", rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Delete(ctx, "log_attendance_test", "go-test"); err != nil {
		t.Errorf("delete: %v", err)
	}
}
