package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
)

func TestSelectStudentsPlaceholders(t *testing.T) {
	level := 2
	filter := StudentFilter{Course: "BSIT", Level: &level}

	sqliteSQL, args, err := selectStudents(squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question), filter)
	if err != nil {
		t.Fatalf("selectStudents(question) error = %v", err)
	}
	if !strings.Contains(sqliteSQL, "course = ?") || !strings.Contains(sqliteSQL, "level = ?") {
		t.Fatalf("unexpected sqlite SQL: %s", sqliteSQL)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want 2 values", args)
	}

	pgSQL, _, err := selectStudents(squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar), filter)
	if err != nil {
		t.Fatalf("selectStudents(dollar) error = %v", err)
	}
	if !strings.Contains(pgSQL, "$1") || !strings.Contains(pgSQL, "$2") {
		t.Fatalf("unexpected postgres SQL: %s", pgSQL)
	}
}

func TestSelectStudentsWithoutFilterHasNoWhere(t *testing.T) {
	query, args, err := selectStudents(squirrel.StatementBuilder, StudentFilter{})
	if err != nil {
		t.Fatalf("selectStudents() error = %v", err)
	}
	if strings.Contains(query, "WHERE") || len(args) != 0 {
		t.Fatalf("unexpected filter in %q %v", query, args)
	}
	if !strings.HasSuffix(query, "ORDER BY id ASC") {
		t.Fatalf("query not ordered by id: %s", query)
	}
}

func TestUnavailableStudentRepository(t *testing.T) {
	repo := NewUnavailableStudentRepository(errors.New("disk is read-only"))
	ctx := context.Background()

	if _, err := repo.List(ctx); !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := repo.Create(ctx, newStudent("2021-001")); !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, 1); !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
