package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/nageshcare/nageshcare-api/forms"
	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/services"
	"github.com/nageshcare/nageshcare-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^QR[A-Z0-9]{8}$`)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, services.ErrCodeValidation, svcErr.Code)
	return svcErr.Fields
}

func TestSubmitContact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("persists a new unread message", func(t *testing.T) {
		form := contactForm()
		form.Name = "  Ravi Kumar  "
		msg, err := h.svc.SubmitContact(ctx, form)
		require.NoError(t, err)

		var stored models.ContactMessage
		require.NoError(t, h.db.First(&stored, msg.ID).Error)
		assert.Equal(t, "Ravi Kumar", stored.Name)
		assert.Equal(t, models.ContactStatusNew, stored.Status)
		assert.False(t, stored.IsRead)
		assert.Equal(t, "email", stored.PreferredContactMethod)
	})

	t.Run("missing fields are reported without persisting", func(t *testing.T) {
		before := h.count(t, &models.ContactMessage{})

		_, err := h.svc.SubmitContact(ctx, forms.ContactForm{Email: "not-an-email", Subject: "gossip"})
		fields := fieldsOf(t, err)
		assert.Equal(t, "This field is required.", fields["name"])
		assert.Equal(t, "This field is required.", fields["phone"])
		assert.Equal(t, "This field is required.", fields["message"])
		assert.Equal(t, "Enter a valid email address.", fields["email"])
		assert.Contains(t, fields["subject"], "gossip is not one of the available choices")

		assert.Equal(t, before, h.count(t, &models.ContactMessage{}))
	})
}

func TestSubmitQuoteRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a reference id", func(t *testing.T) {
		h := newHarness(t)
		quote, err := h.svc.SubmitQuoteRequest(ctx, quoteForm(), nil)
		require.NoError(t, err)
		assert.Regexp(t, referencePattern, quote.ReferenceID)
		assert.Equal(t, models.QuoteStatusNew, quote.Status)
		assert.Nil(t, quote.LogoKey)
	})

	t.Run("consent is required", func(t *testing.T) {
		h := newHarness(t)
		form := quoteForm()
		form.AgreedToContact = false

		_, err := h.svc.SubmitQuoteRequest(ctx, form, nil)
		fields := fieldsOf(t, err)
		assert.Equal(t, "You must check this box to continue.", fields["agreed_to_contact"])
		assert.Zero(t, h.count(t, &models.QuoteRequest{}))
	})

	t.Run("stores an uploaded logo", func(t *testing.T) {
		h := newHarness(t)
		h.svc.SetClock(func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) })
		logo := testutil.CreateTestFileHeader(t, testutil.TestFile{
			Field:       "logo_file",
			Filename:    "asha logo.png",
			ContentType: "image/png",
			Content:     []byte("png-bytes"),
		})

		quote, err := h.svc.SubmitQuoteRequest(ctx, quoteForm(), logo)
		require.NoError(t, err)
		require.NotNil(t, quote.LogoKey)
		assert.True(t, quote.HasLogo)
		assert.Regexp(t, `^quote_logos/2026/03/[0-9a-f-]{36}-asha_logo\.png$`, *quote.LogoKey)
		assert.Equal(t, []byte("png-bytes"), h.store.Files()[*quote.LogoKey])
	})

	t.Run("rejects a logo with an unsupported extension", func(t *testing.T) {
		h := newHarness(t)
		logo := testutil.CreateTestFileHeader(t, testutil.TestFile{Filename: "logo.exe", Content: []byte("MZ")})

		_, err := h.svc.SubmitQuoteRequest(ctx, quoteForm(), logo)
		fields := fieldsOf(t, err)
		assert.Contains(t, fields["logo_file"], "Only")
		assert.Empty(t, h.store.Files())
	})

	t.Run("retries when the reference id collides", func(t *testing.T) {
		h := newHarness(t)
		existing := models.QuoteRequest{
			Name: "First", BusinessName: "First Co", BusinessType: "other", Email: "a@example.com",
			Phone: "1", ProductInterests: "x", DeliveryCity: "c", DeliveryState: "s", DeliveryPin: "1",
			AgreedToContact: true, ReferenceID: "QRAAAAAAAA",
		}
		require.NoError(t, h.db.Create(&existing).Error)

		ids := []string{"QRAAAAAAAA", "QRAAAAAAAA", "QRBBBBBBBB"}
		calls := 0
		h.svc.SetReferenceGenerator(func() (string, error) {
			id := ids[calls]
			calls++
			return id, nil
		})

		quote, err := h.svc.SubmitQuoteRequest(ctx, quoteForm(), nil)
		require.NoError(t, err)
		assert.Equal(t, "QRBBBBBBBB", quote.ReferenceID)
		assert.Equal(t, 3, calls)
		assert.Equal(t, int64(2), h.count(t, &models.QuoteRequest{}))
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		h := newHarness(t)
		first := h.newQuote(t)
		calls := 0
		h.svc.SetReferenceGenerator(func() (string, error) {
			calls++
			return first.ReferenceID, nil
		})
		logo := testutil.CreateTestFileHeader(t, testutil.TestFile{Filename: "logo.png", Content: []byte("png")})

		_, err := h.svc.SubmitQuoteRequest(ctx, quoteForm(), logo)
		require.Error(t, err)
		assert.Equal(t, services.ErrCodeDatabase, services.CodeOf(err))
		assert.Equal(t, 5, calls)
		assert.Equal(t, int64(1), h.count(t, &models.QuoteRequest{}))
		assert.Empty(t, h.store.Files(), "stored logo is removed when the row cannot be created")
	})
}

func TestSubmitProductInquiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	product := newProduct(t, h.db, "Rose Dhoop", true)

	form := forms.ProductInquiryForm{
		ProductID:        &product.ID,
		Name:             "Meera",
		BusinessName:     "Meera Spa",
		Email:            "meera@example.com",
		Phone:            "9000000000",
		QuantityNeeded:   "200 boxes",
		DeliveryLocation: "Goa",
	}

	inquiry, err := h.svc.SubmitProductInquiry(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusNew, inquiry.Status)
	require.NotNil(t, inquiry.ProductID)
	assert.Equal(t, product.ID, *inquiry.ProductID)

	missing := uint(9999)
	form.ProductID = &missing
	_, err = h.svc.SubmitProductInquiry(ctx, form)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "product_id")
	assert.Equal(t, int64(1), h.count(t, &models.Inquiry{}))

	form.ProductID = nil
	_, err = h.svc.SubmitProductInquiry(ctx, form)
	require.NoError(t, err)
}

func TestListContactMessages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		h.newContact(t)
	}
	other := contactForm()
	other.Name = "Zoya Traders"
	other.Subject = models.SubjectComplaint
	zoya, err := h.svc.SubmitContact(ctx, other)
	require.NoError(t, err)

	page, err := h.svc.ListContactMessages(ctx, services.ContactFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(26), page.Total)
	assert.Len(t, page.Items, services.DefaultPageSize)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, zoya.ID, page.Items[0].ID, "newest first")

	page, err = h.svc.ListContactMessages(ctx, services.ContactFilter{ListParams: services.ListParams{Page: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)

	page, err = h.svc.ListContactMessages(ctx, services.ContactFilter{ListParams: services.ListParams{PageSize: 500}})
	require.NoError(t, err)
	assert.Equal(t, services.MaxPageSize, page.PageSize)

	page, err = h.svc.ListContactMessages(ctx, services.ContactFilter{ListParams: services.ListParams{Search: "zoya"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, zoya.ID, page.Items[0].ID)

	page, err = h.svc.ListContactMessages(ctx, services.ContactFilter{Subject: models.SubjectComplaint})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = h.svc.UpdateContactStatus(ctx, zoya.ID, "closed", nil)
	require.NoError(t, err)
	page, err = h.svc.ListContactMessages(ctx, services.ContactFilter{ListParams: services.ListParams{Status: "closed"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	unread := false
	page, err = h.svc.ListContactMessages(ctx, services.ContactFilter{IsRead: &unread})
	require.NoError(t, err)
	assert.Equal(t, int64(26), page.Total)

	_, err = h.svc.ListContactMessages(ctx, services.ContactFilter{ListParams: services.ListParams{Status: "archived"}})
	assert.True(t, services.IsValidation(err))
}

func TestListQuoteRequestsAndInquiries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	quote := h.newQuote(t)
	form := quoteForm()
	form.BusinessType = "hotel_resort"
	form.BusinessName = "Sea View Resort"
	_, err := h.svc.SubmitQuoteRequest(ctx, form, nil)
	require.NoError(t, err)

	page, err := h.svc.ListQuoteRequests(ctx, services.QuoteFilter{BusinessType: "hotel_resort"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Sea View Resort", page.Items[0].BusinessName)

	page, err = h.svc.ListQuoteRequests(ctx, services.QuoteFilter{ListParams: services.ListParams{Search: quote.ReferenceID}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, quote.ID, page.Items[0].ID)

	product := newProduct(t, h.db, "Jasmine Tissue", true)
	_, err = h.svc.SubmitProductInquiry(ctx, forms.ProductInquiryForm{
		ProductID: &product.ID, Name: "Meera", BusinessName: "Meera Spa", Email: "meera@example.com",
		Phone: "9", QuantityNeeded: "10", DeliveryLocation: "Goa",
	})
	require.NoError(t, err)

	inquiries, err := h.svc.ListInquiries(ctx, services.InquiryFilter{ProductID: &product.ID})
	require.NoError(t, err)
	require.Len(t, inquiries.Items, 1)
	require.NotNil(t, inquiries.Items[0].Product)
	assert.Equal(t, "Jasmine Tissue", inquiries.Items[0].Product.Name)
}

func TestGetContactDetailMarksRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	msg := h.newContact(t)

	detail, err := h.svc.GetContactDetail(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsRead)

	var stored models.ContactMessage
	require.NoError(t, h.db.First(&stored, msg.ID).Error)
	assert.True(t, stored.IsRead)

	again, err := h.svc.GetContactDetail(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)

	_, err = h.svc.GetContactDetail(ctx, 9999)
	assert.True(t, services.IsNotFound(err))
	assert.EqualError(t, err, services.MsgContactNotFound)
}

func TestUpdateStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("contact status and notes", func(t *testing.T) {
		msg := h.newContact(t)
		notes := "Called back, wants samples"
		updated, err := h.svc.UpdateContactStatus(ctx, msg.ID, "closed", &notes)
		require.NoError(t, err)
		assert.Equal(t, models.ContactStatusClosed, updated.Status)

		// any valid target is accepted, including reopening
		updated, err = h.svc.UpdateContactStatus(ctx, msg.ID, "new", nil)
		require.NoError(t, err)
		assert.Equal(t, models.ContactStatusNew, updated.Status)

		var stored models.ContactMessage
		require.NoError(t, h.db.First(&stored, msg.ID).Error)
		assert.Equal(t, models.ContactStatusNew, stored.Status)
		assert.Equal(t, notes, stored.AdminNotes, "notes are kept when not supplied")
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		quote := h.newQuote(t)
		_, err := h.svc.UpdateQuoteStatus(ctx, quote.ID, "won", nil)
		fields := fieldsOf(t, err)
		assert.Contains(t, fields["status"], "won")

		var stored models.QuoteRequest
		require.NoError(t, h.db.First(&stored, quote.ID).Error)
		assert.Equal(t, models.QuoteStatusNew, stored.Status)
	})

	t.Run("quote status uses the quote lifecycle", func(t *testing.T) {
		quote := h.newQuote(t)
		updated, err := h.svc.UpdateQuoteStatus(ctx, quote.ID, "negotiating", nil)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusNegotiating, updated.Status)

		_, err = h.svc.UpdateContactStatus(ctx, 4242, "closed", nil)
		assert.True(t, services.IsNotFound(err))
	})

	t.Run("inquiry status", func(t *testing.T) {
		inquiry, err := h.svc.SubmitProductInquiry(ctx, forms.ProductInquiryForm{
			Name: "Meera", BusinessName: "Meera Spa", Email: "meera@example.com",
			Phone: "9", QuantityNeeded: "10", DeliveryLocation: "Goa",
		})
		require.NoError(t, err)
		updated, err := h.svc.UpdateInquiryStatus(ctx, inquiry.ID, "quoted", nil)
		require.NoError(t, err)
		assert.Equal(t, models.InquiryStatusQuoted, updated.Status)

		_, err = h.svc.UpdateInquiryStatus(ctx, inquiry.ID, "negotiating", nil)
		assert.True(t, services.IsValidation(err))
	})
}

func TestBulkActions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, b, c := h.newContact(t), h.newContact(t), h.newContact(t)

	n, err := h.svc.SetContactRead(ctx, []uint{a.ID, b.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = h.svc.BulkUpdateStatus(ctx, "contact", []uint{b.ID, c.ID}, "contacted")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var stored []models.ContactMessage
	require.NoError(t, h.db.Order("id").Find(&stored).Error)
	assert.True(t, stored[0].IsRead)
	assert.Equal(t, models.ContactStatusNew, stored[0].Status)
	assert.Equal(t, models.ContactStatusContacted, stored[1].Status)
	assert.False(t, stored[2].IsRead)

	_, err = h.svc.BulkUpdateStatus(ctx, "quote", []uint{a.ID}, "contacted")
	assert.True(t, services.IsValidation(err))

	_, err = h.svc.BulkUpdateStatus(ctx, "contact", nil, "closed")
	assert.True(t, services.IsValidation(err))
}

func TestDeleteQuoteRequestRemovesRepliesAndFiles(t *testing.T) {
	h := newHarness(t)
	h.configureMail(t)
	ctx := context.Background()

	logo := testutil.CreateTestFileHeader(t, testutil.TestFile{Filename: "logo.png", Content: []byte("logo")})
	quote, err := h.svc.SubmitQuoteRequest(ctx, quoteForm(), logo)
	require.NoError(t, err)

	attachment := testutil.CreateTestFileHeader(t, testutil.TestFile{Filename: "prices.pdf", Content: []byte("%PDF")})
	result, err := h.svc.SendReply(ctx, services.ReplyRequest{
		InquiryType: models.InquiryTypeQuote,
		InquiryID:   quote.ID,
		Subject:     "Your quote",
		Message:     "Prices attached",
		Attachment:  attachment,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Len(t, h.store.Files(), 2)

	require.NoError(t, h.svc.DeleteQuoteRequest(ctx, quote.ID))
	assert.Zero(t, h.count(t, &models.QuoteRequest{}))
	assert.Zero(t, h.count(t, &models.InquiryReply{}))
	assert.Empty(t, h.store.Files())

	err = h.svc.DeleteQuoteRequest(ctx, quote.ID)
	assert.True(t, services.IsNotFound(err))
}

func TestDeleteContactMessage(t *testing.T) {
	h := newHarness(t)
	h.configureMail(t)
	ctx := context.Background()
	keep := h.newContact(t)
	drop := h.newContact(t)

	for _, id := range []uint{keep.ID, drop.ID} {
		_, err := h.svc.SendReply(ctx, services.ReplyRequest{
			InquiryType: models.InquiryTypeContact, InquiryID: id, Subject: "Hi", Message: "Thanks",
		})
		require.NoError(t, err)
	}

	require.NoError(t, h.svc.DeleteContactMessage(ctx, drop.ID))
	assert.Equal(t, int64(1), h.count(t, &models.ContactMessage{}))
	assert.Equal(t, int64(1), h.count(t, &models.InquiryReply{}))

	replies, err := h.svc.ListReplies(ctx, models.InquiryTypeContact, keep.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 1)
}

func TestOpenStoredFiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	quote := h.newQuote(t)
	_, err := h.svc.OpenQuoteLogo(ctx, quote.ID)
	assert.True(t, services.IsNotFound(err))

	logo := testutil.CreateTestFileHeader(t, testutil.TestFile{Filename: "brand.svg", Content: []byte("<svg/>")})
	withLogo, err := h.svc.SubmitQuoteRequest(ctx, quoteForm(), logo)
	require.NoError(t, err)

	file, err := h.svc.OpenQuoteLogo(ctx, withLogo.ID)
	require.NoError(t, err)
	defer file.Content.Close()
	assert.Contains(t, file.Name, "brand.svg")

	h.store.Clear()
	_, err = h.svc.OpenQuoteLogo(ctx, withLogo.ID)
	assert.True(t, services.IsNotFound(err))

	_, err = h.svc.OpenReplyAttachment(ctx, 12345)
	assert.True(t, services.IsNotFound(err))
	assert.False(t, errors.Is(err, services.ErrBlobNotFound))
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	read := h.newContact(t)
	h.newContact(t)
	h.newQuote(t)
	newProduct(t, h.db, "Active", true)
	newProduct(t, h.db, "Retired", false)

	_, err := h.svc.GetContactDetail(ctx, read.ID)
	require.NoError(t, err)
	_, err = h.svc.UpdateContactStatus(ctx, read.ID, "contacted", nil)
	require.NoError(t, err)

	stats, err := h.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NewContactMessages)
	assert.Equal(t, int64(1), stats.UnreadContactMessages)
	assert.Equal(t, int64(1), stats.NewQuoteRequests)
	assert.Equal(t, int64(0), stats.NewProductInquiries)
	assert.Equal(t, int64(1), stats.ActiveProducts)
	assert.Len(t, stats.RecentMessages, 2)
	assert.Len(t, stats.RecentQuotes, 1)
}
