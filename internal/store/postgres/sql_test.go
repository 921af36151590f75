package postgres

import (
	"reflect"
	"testing"

	"github.com/spigell/cv-screener/internal/store"
)

func TestSelectSQL(t *testing.T) {
	q := store.Where(
		store.In(store.ColFolderID, []int64{1, 2}),
		store.Eq(store.ColFileName, "cv.pdf"),
	).OrderBy(store.ColFullName, false).Page(20, 10)

	sql, args, err := selectSQL("id", store.TableCandidates, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SELECT id FROM candidatos WHERE carpeta_id IN ($1, $2) AND nombre_archivo = $3 ORDER BY nombre_candidato ASC NULLS LAST LIMIT $4 OFFSET $5"
	if sql != want {
		t.Fatalf("unexpected sql:\n%s\nwant:\n%s", sql, want)
	}

	if !reflect.DeepEqual(args, []any{int64(1), int64(2), "cv.pdf", 10, 20}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestWhereClauseNullAndEmptySet(t *testing.T) {
	a := &args{}
	where, err := whereClause([]store.Filter{
		store.FolderScope(nil),
		store.In(store.ColID, []int64{}),
	}, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if where != " WHERE carpeta_id IS NULL AND FALSE" {
		t.Fatalf("unexpected where clause %q", where)
	}
	if len(a.values) != 0 {
		t.Fatalf("expected no args, got %v", a.values)
	}
}

func TestUpdateSQLOrdersColumns(t *testing.T) {
	score := 85
	justification := "Great fit"
	cols := store.EvaluationUpdate{Score: &score, Justification: &justification}.Columns()

	sql, args, err := updateSQL(store.TableEvaluations, cols, []store.Filter{store.Eq(store.ColID, int64(3))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "UPDATE evaluaciones SET calificacion = $1, resumen = $2 WHERE id = $3"
	if sql != want {
		t.Fatalf("unexpected sql %q", sql)
	}
	if !reflect.DeepEqual(args, []any{85, "Great fit", int64(3)}) {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestDeleteSQLRequiresFilter(t *testing.T) {
	if _, _, err := deleteSQL(store.TableCandidates, nil); err == nil {
		t.Fatalf("expected an unfiltered delete to be refused")
	}
}

func TestCountSQL(t *testing.T) {
	sql, args, err := countSQL(store.TableEvaluations, []store.Filter{store.Eq(store.ColPostingID, int64(9))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "SELECT count(*) FROM evaluaciones WHERE aviso_id = $1" || len(args) != 1 {
		t.Fatalf("unexpected count sql %q %v", sql, args)
	}
}
