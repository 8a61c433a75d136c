//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"staybook/internal/domain"
	mysqlrepo "staybook/internal/storage/mysql"
)

// migrationsDir honours MIGRATIONS_DIR and falls back to the repo's own.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("migrations dir %s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=staybook",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "staybook")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_SessionStore(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	a := repo.ForSession("sess-a")
	b := repo.ForSession("sess-b")

	if _, ok, err := a.Get(ctx, domain.KeyCart); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := a.Set(ctx, domain.KeyCart, `{"items":[]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// upsert overwrites
	if err := a.Set(ctx, domain.KeyCart, `{"items":[],"total":0}`); err != nil {
		t.Fatalf("Set again: %v", err)
	}
	v, ok, err := a.Get(ctx, domain.KeyCart)
	if err != nil || !ok || v != `{"items":[],"total":0}` {
		t.Fatalf("Get = %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := b.Get(ctx, domain.KeyCart); ok {
		t.Fatalf("session b sees session a's cart")
	}

	if err := a.Remove(ctx, domain.KeyCart); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := a.Get(ctx, domain.KeyCart); ok {
		t.Fatalf("expected key removed")
	}
}

func TestRepo_MySQL_PurgeAndMisses(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if err := repo.ForSession("old").Set(ctx, domain.KeyTheme, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// small sleep so the old session's updated_at falls behind the cutoff
	time.Sleep(1100 * time.Millisecond)
	if err := repo.ForSession("fresh").Set(ctx, domain.KeyTheme, "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	n, err := repo.PurgeIdle(ctx, time.Second)
	if err != nil {
		t.Fatalf("PurgeIdle: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged row, got %d", n)
	}
	if _, ok, _ := repo.ForSession("fresh").Get(ctx, domain.KeyTheme); !ok {
		t.Fatalf("fresh session was purged")
	}

	if err := repo.LogMiss(ctx, "h404", 404, "not found"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, "h404", 403, "inactive"); err != nil {
		t.Fatalf("LogMiss again: %v", err)
	}
	ms, err := repo.ListMisses(ctx, 10)
	if err != nil {
		t.Fatalf("ListMisses: %v", err)
	}
	if len(ms) != 1 || ms[0].Status != 403 || ms[0].Reason != "inactive" {
		t.Fatalf("unexpected misses: %+v", ms)
	}
}
