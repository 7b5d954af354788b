package db

import (
	"reflect"
	"testing"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		args     []interface{}
		want     string
		wantArgs []interface{}
	}{
		{
			name:     "in order",
			query:    "SELECT * FROM scores WHERE inquiry_id = $1 AND declaration_id = $2",
			args:     []interface{}{int64(7), int64(3)},
			want:     "SELECT * FROM scores WHERE inquiry_id = ? AND declaration_id = ?",
			wantArgs: []interface{}{int64(7), int64(3)},
		},
		{
			name:     "reordered and repeated",
			query:    "UPDATE t SET a = $2, b = $1 WHERE c = $2",
			args:     []interface{}{"one", "two"},
			want:     "UPDATE t SET a = ?, b = ? WHERE c = ?",
			wantArgs: []interface{}{"two", "one", "two"},
		},
		{
			name:     "two digit placeholder",
			query:    "VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)",
			args:     []interface{}{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			want:     "VALUES (?,?,?,?,?,?,?,?,?,?)",
			wantArgs: []interface{}{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name:     "quoted dollar is a literal",
			query:    "SELECT '$1' || name FROM t WHERE id = $1",
			args:     []interface{}{5},
			want:     "SELECT '$1' || name FROM t WHERE id = ?",
			wantArgs: []interface{}{5},
		},
		{
			name:     "no placeholders",
			query:    "DELETE FROM pages",
			args:     nil,
			want:     "DELETE FROM pages",
			wantArgs: []interface{}{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotArgs := rebind(tt.query, tt.args)
			if got != tt.want {
				t.Errorf("query = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Errorf("args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestBind_PostgresUntouched(t *testing.T) {
	q := New(nil)
	query := "SELECT $1"
	got, args := q.bind(query, []interface{}{1})
	if got != query || len(args) != 1 {
		t.Errorf("bind() = %q %v, want unchanged", got, args)
	}
	if q.Dialect() != Postgres || q.Dialect().String() != "postgres" {
		t.Errorf("dialect = %v", q.Dialect())
	}
}
