package match_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/verdantry/canopy-backend/internal/compliance/match"
	"github.com/verdantry/canopy-backend/internal/domain"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Blue Dream 1g", "bluedream1g"},
		{"BLUE-DREAM_1G", "bluedream1g"},
		{"  og kush!! 3.5g ", "ogkush35g"},
		{"", ""},
		{"---", ""},
	}
	for _, c := range cases {
		if got := match.Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"blue-dream-1g.pdf", "bluedream1g"},
		{"coas/2024/Blue-Dream_1g.PDF", "bluedream1g"},
		{"uploads\\og-kush.jpeg", "ogkush"},
		{"sour-diesel.webp", "sourdiesel"},
		{"report.txt", "reporttxt"},
		{"no-extension", "noextension"},
	}
	for _, c := range cases {
		if got := match.NormalizeFileName(c.in); got != c.want {
			t.Fatalf("NormalizeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		product string
		file    string
		want    int
	}{
		{"Blue Dream 1g", "blue-dream-1g.pdf", 100},
		{"Blue Dream 1g", "coas/BLUE_DREAM_1G.PDF", 100},
		{"Blue Dream", "blue-dream-1g-batch-7.pdf", 85},
		{"Blue Dream 1g Batch 7", "blue-dream-1g.pdf", 85},
		{"Blue Dream 1g", "sour-diesel.pdf", 0},
		{"", "blue-dream-1g.pdf", 0},
		{"Blue Dream 1g", "...", 0},
	}
	for _, c := range cases {
		if got := match.Score(c.product, c.file); got != c.want {
			t.Fatalf("Score(%q, %q) = %d, want %d", c.product, c.file, got, c.want)
		}
	}
}

func cert(id string, fileName string, productID *uuid.UUID) *domain.Certificate {
	return &domain.Certificate{
		ID:        uuid.MustParse(id),
		ProductID: productID,
		FileName:  fileName,
	}
}

func TestBestMatch_PrefersExactOverContains(t *testing.T) {
	certs := []*domain.Certificate{
		cert("99999999-0000-0000-0000-000000000001", "blue-dream-1g-batch-7.pdf", nil),
		cert("00000000-0000-0000-0000-000000000002", "blue-dream-1g.pdf", nil),
	}
	got := match.BestMatch("Blue Dream 1g", certs)
	if got == nil {
		t.Fatalf("expected a match")
	}
	if got.Score != 100 || got.Certificate.FileName != "blue-dream-1g.pdf" {
		t.Fatalf("expected the exact match to win, got %q with score %d",
			got.Certificate.FileName, got.Score)
	}
}

func TestBestMatch_SkipsLinkedCertificates(t *testing.T) {
	owner := uuid.New()
	certs := []*domain.Certificate{
		cert("00000000-0000-0000-0000-000000000001", "blue-dream-1g.pdf", &owner),
	}
	if got := match.BestMatch("Blue Dream 1g", certs); got != nil {
		t.Fatalf("expected linked certificate to be ignored, got %+v", got)
	}
}

func TestBestMatch_NilBelowThreshold(t *testing.T) {
	certs := []*domain.Certificate{
		cert("00000000-0000-0000-0000-000000000001", "sour-diesel.pdf", nil),
	}
	if got := match.BestMatch("Blue Dream 1g", certs); got != nil {
		t.Fatalf("expected no match below threshold, got %+v", got)
	}
}

func TestBestMatch_TieBreaksOnSmallestID(t *testing.T) {
	certs := []*domain.Certificate{
		cert("bbbbbbbb-0000-0000-0000-000000000000", "blue-dream-1g-batch-2.pdf", nil),
		cert("aaaaaaaa-0000-0000-0000-000000000000", "blue-dream-1g-batch-1.pdf", nil),
		cert("cccccccc-0000-0000-0000-000000000000", "blue-dream-1g-batch-3.pdf", nil),
	}
	got := match.BestMatch("Blue Dream 1g", certs)
	if got == nil {
		t.Fatalf("expected a match")
	}
	if got.Certificate.ID.String() != "aaaaaaaa-0000-0000-0000-000000000000" {
		t.Fatalf("expected smallest id to win the tie, got %s", got.Certificate.ID)
	}
}

func TestBestMatch_EmptyInput(t *testing.T) {
	if got := match.BestMatch("Blue Dream 1g", nil); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
}
