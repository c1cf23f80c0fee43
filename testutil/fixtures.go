package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// StoreFile is the default output store name written by tasks.
const StoreFile = "data.sqlite"

// Workspace is a temporary task root.
type Workspace struct {
	t    *testing.T
	Root string
}

// NewWorkspace creates an empty task root that is removed after the test.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{t: t, Root: t.TempDir()}
}

// Task creates (or reopens) the task directory name under the root.
func (w *Workspace) Task(name string) *TaskDir {
	w.t.Helper()
	dir := filepath.Join(w.Root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.t.Fatalf("creating task dir %s: %v", name, err)
	}
	return &TaskDir{t: w.t, Dir: dir}
}

// BundleShim writes a fake bundler under the workspace and returns its path.
// "update" succeeds unless the task directory holds a .bundle-fail file;
// "exec" runs the remaining arguments.
func (w *Workspace) BundleShim() string {
	w.t.Helper()
	path := filepath.Join(w.Root, ".bin", "bundle.sh")
	writeFile(w.t, path, `#!/bin/sh
case "$1" in
update)
	if [ -f .bundle-fail ]; then
		echo "could not resolve dependencies" >&2
		exit 7
	fi
	if [ -f .bundle-slow ]; then
		sleep 30
	fi
	echo "bundle updated"
	;;
exec)
	shift
	exec "$@"
	;;
*)
	echo "unknown command $1" >&2
	exit 64
	;;
esac
`, 0o755)
	return path
}

// TaskDir is one task directory under construction.
type TaskDir struct {
	t   *testing.T
	Dir string
}

// File writes a regular file relative to the task directory.
func (d *TaskDir) File(name, content string) *TaskDir {
	d.t.Helper()
	writeFile(d.t, filepath.Join(d.Dir, name), content, 0o644)
	return d
}

// Script writes an executable shell script with the given body.
func (d *TaskDir) Script(name, body string) *TaskDir {
	d.t.Helper()
	writeFile(d.t, filepath.Join(d.Dir, name), "#!/bin/sh\n"+body+"\n", 0o755)
	return d
}

// Store writes the task's data.sqlite with one table. Columns are DDL
// fragments such as "a INTEGER"; rows are inserted in order.
func (d *TaskDir) Store(table string, columns []string, rows ...map[string]any) *TaskDir {
	d.t.Helper()
	WriteStore(d.t, filepath.Join(d.Dir, StoreFile), table, columns, rows...)
	return d
}

// CorruptStore writes a data.sqlite that is not a database.
func (d *TaskDir) CorruptStore() *TaskDir {
	d.t.Helper()
	writeFile(d.t, filepath.Join(d.Dir, StoreFile), strings.Repeat("not a database ", 128), 0o644)
	return d
}

// Path joins name onto the task directory.
func (d *TaskDir) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

// WriteStore creates an SQLite file at path holding table with the given
// columns and rows.
func WriteStore(t *testing.T, path, table string, columns []string, rows ...map[string]any) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("opening store %s: %v", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("store handle: %v", err)
	}
	defer sqlDB.Close()

	ddl := fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(columns, ", "))
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("creating table: %v", err)
	}
	for i, row := range rows {
		if err := db.Table(table).Create(row).Error; err != nil {
			t.Fatalf("inserting row %d: %v", i, err)
		}
	}
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
