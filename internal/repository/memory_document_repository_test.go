package repository

import (
	"errors"
	"testing"
	"time"

	"scan-station/internal/domain"
)

func TestMemoryDocumentRepository_CRUD(t *testing.T) {
	repo := NewMemoryDocumentRepository()
	doc := domain.NewDocument("inbox")

	if err := repo.Create(doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(doc); err == nil {
		t.Fatal("Create() accepted duplicate id")
	}

	got, err := repo.GetByID(doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != doc {
		t.Error("GetByID() returned a different document")
	}

	if err := repo.Delete(doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(doc.ID); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("GetByID() after delete error = %v, want ErrDocumentNotFound", err)
	}
	if err := repo.Delete(doc.ID); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("Delete() twice error = %v, want ErrDocumentNotFound", err)
	}
}

func TestMemoryDocumentRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryDocumentRepository()

	older := domain.NewDocument("older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := domain.NewDocument("newer")

	_ = repo.Create(older)
	_ = repo.Create(newer)

	docs, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("List() returned %d documents, want 2", len(docs))
	}
	if docs[0].Name != "newer" || docs[1].Name != "older" {
		t.Errorf("order = [%s, %s], want [newer, older]", docs[0].Name, docs[1].Name)
	}
}
