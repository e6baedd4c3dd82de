package storage

import (
	"strings"
	"testing"
)

// The pick/supersede query is the one piece of queue.go with no live-database
// path to exercise in-process; this pins its load-bearing clauses so an edit
// can't silently drop the lock or the supersession semantics.
func TestSQLPickCoalesce_HasLockAndSupersessionClauses(t *testing.T) {
	for _, want := range []string{
		"FOR UPDATE SKIP LOCKED",
		"status = 'skipped'",
		"status = 'picked'",
		"ORDER BY created_at DESC",
	} {
		if !strings.Contains(sqlPickCoalesce, want) {
			t.Errorf("sqlPickCoalesce missing expected clause %q", want)
		}
	}
}
