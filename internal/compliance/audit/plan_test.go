package audit_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/verdantry/canopy-backend/internal/compliance/audit"
	"github.com/verdantry/canopy-backend/internal/domain"
)

func product(name string) *domain.Product {
	return &domain.Product{ID: uuid.New(), Name: name}
}

func certificate(fileName string, productID *uuid.UUID) *domain.Certificate {
	return &domain.Certificate{
		ID:        uuid.New(),
		ProductID: productID,
		FileName:  fileName,
		FileURL:   "https://storage.example.com/coas/" + fileName,
	}
}

func TestIsPDF(t *testing.T) {
	cases := []struct {
		name string
		cert *domain.Certificate
		want bool
	}{
		{
			name: "plain pdf url",
			cert: &domain.Certificate{FileURL: "https://x.example.com/coas/a.pdf", FileName: "a.pdf"},
			want: true,
		},
		{
			name: "signed url with query",
			cert: &domain.Certificate{FileURL: "https://x.example.com/coas/a.PDF?X-Goog-Signature=abc&type=.png", FileName: "a.pdf"},
			want: true,
		},
		{
			name: "query-only pdf mention is not a pdf",
			cert: &domain.Certificate{FileURL: "https://x.example.com/coas/a.png?orig=a.pdf", FileName: "a.png"},
			want: false,
		},
		{
			name: "unparseable url falls back to file name",
			cert: &domain.Certificate{FileURL: "://not a url", FileName: "scan.pdf"},
			want: true,
		},
		{
			name: "image",
			cert: &domain.Certificate{FileURL: "https://x.example.com/coas/a.jpg", FileName: "a.jpg"},
			want: false,
		},
		{
			name: "nil",
			cert: nil,
			want: false,
		},
	}
	for _, c := range cases {
		if got := audit.IsPDF(c.cert); got != c.want {
			t.Fatalf("%s: IsPDF = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestBuildPlan_Statuses(t *testing.T) {
	compliant := product("Blue Dream 1g")
	matched := product("Sour Diesel 3.5g")
	missing := product("Gelato 1g")

	linkedCert := certificate("blue-dream-1g.pdf", &compliant.ID)
	candidateCert := certificate("sour-diesel-35g.pdf", nil)
	strayCert := certificate("unrelated-report.pdf", nil)

	plans := audit.BuildPlan(
		[]*domain.Product{compliant, matched, missing},
		[]*domain.Certificate{linkedCert, candidateCert, strayCert},
	)
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}

	byID := make(map[uuid.UUID]audit.ProductPlan, len(plans))
	for _, p := range plans {
		byID[p.Product.ID] = p
	}

	cp := byID[compliant.ID]
	if cp.Status != audit.StatusCompliant {
		t.Fatalf("expected compliant, got %s", cp.Status)
	}
	if len(cp.LinkedCertificates) != 1 || cp.LinkedCertificates[0].ID != linkedCert.ID {
		t.Fatalf("expected the linked certificate on the compliant plan")
	}
	if cp.Candidate != nil {
		t.Fatalf("compliant product must not get a candidate")
	}
	if !cp.ParseActionable {
		t.Fatalf("linked pdf should be parse-actionable")
	}

	mp := byID[matched.ID]
	if mp.Status != audit.StatusMatched {
		t.Fatalf("expected matched, got %s", mp.Status)
	}
	if mp.Candidate == nil || mp.Candidate.Certificate.ID != candidateCert.ID {
		t.Fatalf("expected the candidate certificate on the matched plan")
	}
	if !mp.ParseActionable {
		t.Fatalf("pdf candidate should be parse-actionable")
	}

	xp := byID[missing.ID]
	if xp.Status != audit.StatusMissing {
		t.Fatalf("expected missing, got %s", xp.Status)
	}
	if xp.Candidate != nil || xp.ParseActionable {
		t.Fatalf("missing product must have no candidate and no action")
	}
}

func TestBuildPlan_ImageCandidateNotActionable(t *testing.T) {
	p := product("OG Kush 1g")
	imageCert := certificate("og-kush-1g.jpg", nil)

	plans := audit.BuildPlan([]*domain.Product{p}, []*domain.Certificate{imageCert})
	if plans[0].Status != audit.StatusMatched {
		t.Fatalf("expected matched, got %s", plans[0].Status)
	}
	if plans[0].ParseActionable {
		t.Fatalf("image candidate must not be parse-actionable")
	}
	if actions := audit.Actions(plans); len(actions) != 0 {
		t.Fatalf("image candidate must produce no actions, got %d", len(actions))
	}
}

func TestActions(t *testing.T) {
	compliant := product("Blue Dream 1g")
	matched := product("Sour Diesel 3.5g")
	missing := product("Gelato 1g")

	linkedCert := certificate("blue-dream-1g.pdf", &compliant.ID)
	candidateCert := certificate("sour-diesel-35g.pdf", nil)

	plans := audit.BuildPlan(
		[]*domain.Product{compliant, matched, missing},
		[]*domain.Certificate{linkedCert, candidateCert},
	)
	actions := audit.Actions(plans)
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}

	for _, a := range actions {
		switch a.Product.ID {
		case compliant.ID:
			if a.NeedsLink {
				t.Fatalf("already linked product must not need a link")
			}
			if a.Certificate.ID != linkedCert.ID {
				t.Fatalf("expected the linked certificate, got %s", a.Certificate.ID)
			}
		case matched.ID:
			if !a.NeedsLink {
				t.Fatalf("matched product must need a link")
			}
			if a.Certificate.ID != candidateCert.ID {
				t.Fatalf("expected the candidate certificate, got %s", a.Certificate.ID)
			}
		default:
			t.Fatalf("unexpected action for product %s", a.Product.Name)
		}
	}
}
