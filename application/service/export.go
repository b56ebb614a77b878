package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
)

// ExportKind names an operator export.
type ExportKind string

// ExportKind values.
const (
	ExportLeads       ExportKind = "leads"
	ExportEarlyAccess ExportKind = "early-access"
	ExportBusinesses  ExportKind = "businesses"
)

// ExportKinds lists every supported export.
func ExportKinds() []ExportKind {
	return []ExportKind{ExportLeads, ExportEarlyAccess, ExportBusinesses}
}

// Exports writes operator spreadsheets.
type Exports struct {
	leads      lead.LeadStore
	signups    lead.SignupStore
	businesses business.BusinessStore
	writer     domainservice.TableWriter
	logger     *slog.Logger
}

// NewExports creates a new Exports service.
func NewExports(
	leads lead.LeadStore,
	signups lead.SignupStore,
	businesses business.BusinessStore,
	writer domainservice.TableWriter,
	logger *slog.Logger,
) *Exports {
	return &Exports{
		leads:      leads,
		signups:    signups,
		businesses: businesses,
		writer:     writer,
		logger:     logger,
	}
}

// ContentType returns the MIME type of written exports.
func (s *Exports) ContentType() string {
	return s.writer.ContentType()
}

// Write builds the named export and writes it to w.
func (s *Exports) Write(ctx context.Context, kind ExportKind, w io.Writer) error {
	var (
		table domainservice.Table
		err   error
	)
	switch kind {
	case ExportLeads:
		table, err = s.leadTable(ctx)
	case ExportEarlyAccess:
		table, err = s.signupTable(ctx)
	case ExportBusinesses:
		table, err = s.businessTable(ctx)
	default:
		return fmt.Errorf("unknown export %q", kind)
	}
	if err != nil {
		return err
	}

	if err := s.writer.Write(w, table); err != nil {
		return fmt.Errorf("write %s export: %w", kind, err)
	}
	s.logger.InfoContext(ctx, "export written", slog.String("kind", string(kind)), slog.Int("rows", len(table.Rows)))
	return nil
}

func (s *Exports) leadTable(ctx context.Context) (domainservice.Table, error) {
	leads, err := s.leads.Find(ctx, repository.WithOrderAsc("id"))
	if err != nil {
		return domainservice.Table{}, fmt.Errorf("list leads: %w", err)
	}
	table := domainservice.Table{
		Sheet:  "Leads",
		Header: []string{"ID", "Email", "Name", "Business", "Phone", "Source", "Status", "Created"},
	}
	for _, l := range leads {
		d := l.Details()
		table.Rows = append(table.Rows, []any{
			l.ID(), l.Email(), d.Name, d.BusinessName, d.Phone, d.Source, string(l.Status()), formatTime(l.CreatedAt()),
		})
	}
	return table, nil
}

func (s *Exports) signupTable(ctx context.Context) (domainservice.Table, error) {
	signups, err := s.signups.Find(ctx, repository.WithOrderAsc("id"))
	if err != nil {
		return domainservice.Table{}, fmt.Errorf("list signups: %w", err)
	}
	table := domainservice.Table{
		Sheet:  "Early access",
		Header: []string{"ID", "Email", "Name", "Business", "Status", "Amount (cents)", "Paid", "Created"},
	}
	for _, su := range signups {
		table.Rows = append(table.Rows, []any{
			su.ID(), su.Email(), su.Name(), su.BusinessName(), string(su.Status()), su.AmountCents(),
			formatTime(su.PaidAt()), formatTime(su.CreatedAt()),
		})
	}
	return table, nil
}

func (s *Exports) businessTable(ctx context.Context) (domainservice.Table, error) {
	businesses, err := s.businesses.Find(ctx, repository.WithOrderAsc("id"))
	if err != nil {
		return domainservice.Table{}, fmt.Errorf("list businesses: %w", err)
	}
	table := domainservice.Table{
		Sheet:  "Businesses",
		Header: []string{"ID", "Name", "Slug", "Owner ID", "Subscription", "Industry", "Monthly customers", "Heard about", "Created"},
	}
	for _, b := range businesses {
		sv := b.Survey()
		table.Rows = append(table.Rows, []any{
			b.ID(), b.Name(), b.Slug(), b.OwnerID(), string(b.Subscription()),
			sv.Industry(), sv.MonthlyCustomers(), sv.HeardAbout(), formatTime(b.CreatedAt()),
		})
	}
	return table, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
