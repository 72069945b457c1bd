package leads

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "Jordan Birch", "@jbirch", "Indie game developer", "conference").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	repo := NewPostgresRepository(mock)
	lead, err := repo.Create(context.Background(), &CreateLeadRequest{
		Name:        "Jordan Birch",
		Handle:      "@jbirch",
		Description: "Indie game developer",
		Source:      "conference",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.ID == "" {
		t.Error("expected generated ID")
	}
	if !lead.CreatedAt.Equal(createdAt) {
		t.Errorf("expected createdAt %s, got %s", createdAt, lead.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Create_Invalid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	if _, err := repo.Create(context.Background(), &CreateLeadRequest{Name: "nobody"}); err != ErrMissingHandle {
		t.Errorf("expected ErrMissingHandle, got %v", err)
	}
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, handle").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "handle", "description", "source", "created_at"}))

	repo := NewPostgresRepository(mock)
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "handle", "description", "source", "created_at"}).
		AddRow("1", "A", "@a", "golang engineer", "web", now).
		AddRow("2", "B", "@b", "golang consultant", "web", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, name, handle").
		WithArgs(50, 0).
		WillReturnRows(rows)

	repo := NewPostgresRepository(mock)
	list, err := repo.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(list))
	}
	if list[0].Handle != "@a" {
		t.Errorf("expected @a first, got %s", list[0].Handle)
	}
}
