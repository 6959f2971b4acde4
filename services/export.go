package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/nageshcare/nageshcare-api/models"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var contactExportHeader = []string{
	"ID", "Name", "Email", "Phone", "Business Name", "Subject", "Message",
	"Preferred Contact Method", "Status", "Read", "Created At",
}

var quoteExportHeader = []string{
	"Reference ID", "Name", "Business Name", "Business Type", "Email", "Phone", "WhatsApp",
	"Product Interests", "Order Frequency", "Delivery City", "Delivery State", "Delivery PIN",
	"Budget Range", "Status", "Created At",
}

// ExportContactsCSV writes every contact message matching filter as CSV.
// Paging fields are ignored.
func (s *InquiryService) ExportContactsCSV(ctx context.Context, w io.Writer, filter ContactFilter) error {
	q, err := s.contactQuery(ctx, &filter)
	if err != nil {
		return err
	}
	var rows []models.ContactMessage
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return newDatabaseError("Failed to export contact messages", err)
	}

	out := csv.NewWriter(w)
	if err := out.Write(contactExportHeader); err != nil {
		return err
	}
	for _, m := range rows {
		record := []string{
			strconv.FormatUint(uint64(m.ID), 10),
			m.Name,
			m.Email,
			m.Phone,
			m.BusinessName,
			m.Subject,
			m.Message,
			m.PreferredContactMethod,
			string(m.Status),
			yesNo(m.IsRead),
			m.CreatedAt.UTC().Format(exportTimeLayout),
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// ExportQuotesCSV writes every quote request matching filter as CSV.
// Paging fields are ignored.
func (s *InquiryService) ExportQuotesCSV(ctx context.Context, w io.Writer, filter QuoteFilter) error {
	q, err := s.quoteQuery(ctx, &filter)
	if err != nil {
		return err
	}
	var rows []models.QuoteRequest
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return newDatabaseError("Failed to export quote requests", err)
	}

	out := csv.NewWriter(w)
	if err := out.Write(quoteExportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ReferenceID,
			r.Name,
			r.BusinessName,
			r.BusinessType,
			r.Email,
			r.Phone,
			r.WhatsappNumber,
			r.ProductInterests,
			r.OrderFrequency,
			r.DeliveryCity,
			r.DeliveryState,
			r.DeliveryPin,
			r.BudgetRange,
			string(r.Status),
			r.CreatedAt.UTC().Format(exportTimeLayout),
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// ExportFilename names an export download, e.g. contact_messages_20261014.csv
func ExportFilename(kind string, now time.Time) string {
	return kind + "_" + now.Format("20060102") + ".csv"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
