// Package realtime fans compliance events out to connected dashboards
// over server-sent events. Instances share events through a pub/sub bus
// so a browser can be connected to any replica.
package realtime

import "fmt"

type SSEEvent string

const (
	SSEEventCertificateUploaded SSEEvent = "CertificateUploaded"
	SSEEventCertificateLinked   SSEEvent = "CertificateLinked"
	SSEEventCertificateParsed   SSEEvent = "CertificateParsed"
	SSEEventAuditStarted        SSEEvent = "AuditStarted"
	SSEEventAuditProgress       SSEEvent = "AuditProgress"
	SSEEventAuditResult         SSEEvent = "AuditResult"
	SSEEventAuditCompleted      SSEEvent = "AuditCompleted"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// VendorAuditChannel is the per-vendor channel audit events publish to.
func VendorAuditChannel(vendorID string) string {
	return fmt.Sprintf("vendor:%s:audit", vendorID)
}
