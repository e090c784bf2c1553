package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
)

func TestUploadCreatesAndQueues(t *testing.T) {
	repo := &repoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, domain.LanguageRU)

	doc, err := uc.Upload(context.Background(), "factura aprilie.pdf", "application/pdf", domain.LanguageRO, strings.NewReader("%PDF-"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected generated id")
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", doc.Status)
	}
	if doc.Language != domain.LanguageRO {
		t.Fatalf("explicit language should be kept, got %s", doc.Language)
	}
	if len(storage.keys) != 1 || !strings.HasSuffix(storage.keys[0], "_factura_aprilie.pdf") {
		t.Fatalf("unexpected storage key: %v", storage.keys)
	}
	if len(repo.created) != 1 || repo.created[0].ID != doc.ID {
		t.Fatalf("document metadata not persisted: %+v", repo.created)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("processing event not published: %v", queue.published)
	}
}

func TestUploadDefaultsLanguage(t *testing.T) {
	uc := NewIngestDocumentUseCase(&repoFake{}, &storageFake{}, &queueFake{}, domain.LanguageRU)

	doc, err := uc.Upload(context.Background(), "doc.txt", "text/plain", "", strings.NewReader("text"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Language != domain.LanguageRU {
		t.Fatalf("expected default language ru, got %s", doc.Language)
	}
}

func TestUploadStorageFailureStopsIngestion(t *testing.T) {
	repo := &repoFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, &storageFake{err: errors.New("disk full")}, queue, "")

	if _, err := uc.Upload(context.Background(), "doc.txt", "text/plain", "", strings.NewReader("text")); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.created) != 0 || len(queue.published) != 0 {
		t.Fatalf("nothing should be persisted after a storage failure")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"factura aprilie.pdf", "factura_aprilie.pdf"},
		{"../../etc/passwd", "passwd"},
		{"отчёт.xlsx", "_____.xlsx"},
		{"", "document.bin"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
