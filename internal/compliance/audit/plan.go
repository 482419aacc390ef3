// Package audit derives a compliance work plan from a vendor's products
// and certificates, then executes it with a bounded worker pool.
package audit

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/verdantry/canopy-backend/internal/compliance/match"
	"github.com/verdantry/canopy-backend/internal/domain"
)

// Status classifies a product's certificate coverage.
type Status string

const (
	// StatusCompliant means at least one certificate is already linked.
	StatusCompliant Status = "compliant"
	// StatusMatched means no certificate is linked but an unlinked one
	// matches the product name well enough to propose.
	StatusMatched Status = "matched"
	// StatusMissing means nothing is linked and nothing matches.
	StatusMissing Status = "missing"
)

// ProductPlan is the audit verdict for a single product.
type ProductPlan struct {
	Product            *domain.Product
	LinkedCertificates []*domain.Certificate
	Candidate          *match.Candidate
	Status             Status
	ParseActionable    bool
}

// IsPDF reports whether a certificate points at a PDF document. Only
// the URL's path component is inspected, so signed URLs with query
// parameters classify correctly. Falls back to the stored file name
// when the URL does not parse.
func IsPDF(cert *domain.Certificate) bool {
	if cert == nil {
		return false
	}
	name := cert.FileName
	if u, err := url.Parse(cert.FileURL); err == nil && u.Path != "" {
		name = u.Path
	}
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// BuildPlan evaluates every product against the vendor's certificates.
// A candidate is proposed only for products with zero linked
// certificates. Pure; the inputs are not mutated.
func BuildPlan(products []*domain.Product, certs []*domain.Certificate) []ProductPlan {
	linkedByProduct := make(map[uuid.UUID][]*domain.Certificate)
	for _, cert := range certs {
		if cert == nil || cert.ProductID == nil {
			continue
		}
		linkedByProduct[*cert.ProductID] = append(linkedByProduct[*cert.ProductID], cert)
	}

	plans := make([]ProductPlan, 0, len(products))
	for _, product := range products {
		plan := ProductPlan{
			Product:            product,
			LinkedCertificates: linkedByProduct[product.ID],
		}
		switch {
		case len(plan.LinkedCertificates) > 0:
			plan.Status = StatusCompliant
			for _, cert := range plan.LinkedCertificates {
				if IsPDF(cert) {
					plan.ParseActionable = true
					break
				}
			}
		default:
			plan.Candidate = match.BestMatch(product.Name, certs)
			if plan.Candidate != nil {
				plan.Status = StatusMatched
				plan.ParseActionable = IsPDF(plan.Candidate.Certificate)
			} else {
				plan.Status = StatusMissing
			}
		}
		plans = append(plans, plan)
	}
	return plans
}

// Action is one unit of audit work: parse a certificate into its
// product, linking the pair first when the certificate is still
// unlinked.
type Action struct {
	Product     *domain.Product
	Certificate *domain.Certificate
	NeedsLink   bool
}

// Actions flattens a plan into the runnable work list. Compliant
// products contribute their first linked PDF; matched products
// contribute their candidate with a link step. Products whose only
// certificates are images are skipped here and surface through the
// plan's ParseActionable flag instead.
func Actions(plans []ProductPlan) []Action {
	var actions []Action
	for _, plan := range plans {
		switch plan.Status {
		case StatusCompliant:
			for _, cert := range plan.LinkedCertificates {
				if IsPDF(cert) {
					actions = append(actions, Action{Product: plan.Product, Certificate: cert})
					break
				}
			}
		case StatusMatched:
			if plan.ParseActionable {
				actions = append(actions, Action{
					Product:     plan.Product,
					Certificate: plan.Candidate.Certificate,
					NeedsLink:   true,
				})
			}
		}
	}
	return actions
}
