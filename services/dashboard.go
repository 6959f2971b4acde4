package services

import (
	"context"

	"github.com/nageshcare/nageshcare-api/models"
)

const recentLimit = 5

// DashboardStats summarises what is waiting for staff
type DashboardStats struct {
	NewContactMessages    int64                   `json:"new_contact_messages"`
	UnreadContactMessages int64                   `json:"unread_contact_messages"`
	NewQuoteRequests      int64                   `json:"new_quote_requests"`
	NewProductInquiries   int64                   `json:"new_product_inquiries"`
	ActiveProducts        int64                   `json:"active_products"`
	RecentMessages        []models.ContactMessage `json:"recent_messages"`
	RecentQuotes          []models.QuoteRequest   `json:"recent_quotes"`
}

// Dashboard counts new submissions and lists the most recent ones
func (s *InquiryService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{
		RecentMessages: []models.ContactMessage{},
		RecentQuotes:   []models.QuoteRequest{},
	}

	counts := []struct {
		model interface{}
		where string
		arg   interface{}
		dest  *int64
	}{
		{&models.ContactMessage{}, "status = ?", models.ContactStatusNew, &stats.NewContactMessages},
		{&models.ContactMessage{}, "is_read = ?", false, &stats.UnreadContactMessages},
		{&models.QuoteRequest{}, "status = ?", models.QuoteStatusNew, &stats.NewQuoteRequests},
		{&models.Inquiry{}, "status = ?", models.InquiryStatusNew, &stats.NewProductInquiries},
		{&models.Product{}, "is_active = ?", true, &stats.ActiveProducts},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.arg).Count(c.dest).Error; err != nil {
			return nil, newDatabaseError("Failed to load dashboard", err)
		}
	}

	if err := db.Order("created_at DESC").Order("id DESC").Limit(recentLimit).Find(&stats.RecentMessages).Error; err != nil {
		return nil, newDatabaseError("Failed to load dashboard", err)
	}
	if err := db.Order("created_at DESC").Order("id DESC").Limit(recentLimit).Find(&stats.RecentQuotes).Error; err != nil {
		return nil, newDatabaseError("Failed to load dashboard", err)
	}
	return stats, nil
}
