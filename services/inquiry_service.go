package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strings"
	"time"

	"github.com/nageshcare/nageshcare-api/forms"
	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/metrics"
	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/utils"
	"gorm.io/gorm"
)

const (
	// DefaultPageSize is used when a list request does not ask for one
	DefaultPageSize = 20
	// MaxPageSize caps page_size on list requests
	MaxPageSize = 100
	// maxReferenceAttempts bounds retries when a generated reference ID collides
	maxReferenceAttempts = 5
)

// Not-found messages
const (
	MsgContactNotFound     = "Contact message not found"
	MsgQuoteNotFound       = "Quote request not found"
	MsgInquiryNotFound     = "Product inquiry not found"
	MsgReplyNotFound       = "Reply not found"
	MsgInvalidInquiryType  = `Invalid inquiry type. Must be "contact" or "quote"`
	msgInvalidChoice       = "Select a valid choice. %s is not one of the available choices."
	msgUnknownProduct      = "Select a valid choice. That choice is not one of the available choices."
	quoteLogoPrefix        = "quote_logos"
	replyAttachmentsPrefix = "reply_attachments"
)

// InquiryService runs intake, triage and replies for contact messages,
// quote requests and product inquiries
type InquiryService struct {
	db       *gorm.DB
	settings *SettingsService
	mailer   Mailer
	store    FileStore

	now          func() time.Time
	newReference func() (string, error)
}

// NewInquiryService wires the service to its collaborators
func NewInquiryService(db *gorm.DB, settings *SettingsService, mailer Mailer, store FileStore) *InquiryService {
	return &InquiryService{
		db:           db,
		settings:     settings,
		mailer:       mailer,
		store:        store,
		now:          func() time.Time { return time.Now().UTC() },
		newReference: models.NewReferenceID,
	}
}

// ListParams are the paging and search options shared by every list
type ListParams struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}

func (p *ListParams) normalize() {
	p.Search = strings.TrimSpace(p.Search)
	p.Status = strings.TrimSpace(p.Status)
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// ContactFilter narrows the contact message list
type ContactFilter struct {
	ListParams
	Subject string
	IsRead  *bool
}

// QuoteFilter narrows the quote request list
type QuoteFilter struct {
	ListParams
	BusinessType string
}

// InquiryFilter narrows the product inquiry list
type InquiryFilter struct {
	ListParams
	ProductID *uint
}

// Page is one page of a list result
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func paginate[T any](q *gorm.DB, params ListParams) (*Page[T], error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, newDatabaseError("Failed to count records", err)
	}
	items := []T{}
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve records", err)
	}
	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(params.PageSize))),
	}, nil
}

func searchAny(q *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" {
		return q
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return q.Where(strings.Join(clauses, " OR "), args...)
}

func validateForm(v any) error {
	err := forms.Validate(v)
	if err == nil {
		return nil
	}
	var fields forms.FieldErrors
	if errors.As(err, &fields) {
		return NewValidationError(fields)
	}
	return err
}

func invalidStatus(value string) error {
	return NewValidationError(map[string]string{"status": fmt.Sprintf(msgInvalidChoice, value)})
}

// ---------------------------------------------------------------------------
// Intake
// ---------------------------------------------------------------------------

// SubmitContact validates and stores a public contact message
func (s *InquiryService) SubmitContact(ctx context.Context, form forms.ContactForm) (*models.ContactMessage, error) {
	form.Normalize()
	if err := validateForm(&form); err != nil {
		return nil, err
	}

	msg := form.Model()
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, newDatabaseError("Failed to save contact message", err)
	}

	metrics.RecordSubmission(metrics.KindContact)
	logging.LogKV("info", "contact message received", map[string]interface{}{
		"contact_message_id": msg.ID,
		"subject":            msg.Subject,
	})
	return &msg, nil
}

// SubmitQuoteRequest validates and stores a quote request. An optional logo is
// stored before the row is created.
func (s *InquiryService) SubmitQuoteRequest(ctx context.Context, form forms.QuoteRequestForm, logo *multipart.FileHeader) (*models.QuoteRequest, error) {
	form.Normalize()
	fields := map[string]string{}
	if err := validateForm(&form); err != nil {
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) || svcErr.Code != ErrCodeValidation {
			return nil, err
		}
		fields = svcErr.Fields
	}
	if logo != nil {
		if err := utils.ValidateUpload(logo, utils.LogoExtensions); err != nil {
			fields["logo_file"] = err.Error()
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	quote := form.Model()
	if logo != nil {
		key, err := s.storeUpload(ctx, quoteLogoPrefix, logo)
		if err != nil {
			return nil, err
		}
		quote.LogoKey = &key
		quote.HasLogo = true
	}

	if err := s.createWithReference(ctx, &quote); err != nil {
		if quote.LogoKey != nil {
			deleteBlobs(ctx, s.store, []string{*quote.LogoKey})
		}
		return nil, err
	}

	metrics.RecordSubmission(metrics.KindQuote)
	logging.LogKV("info", "quote request received", map[string]interface{}{
		"quote_request_id": quote.ID,
		"reference_id":     quote.ReferenceID,
		"business_type":    quote.BusinessType,
	})
	return &quote, nil
}

func (s *InquiryService) createWithReference(ctx context.Context, quote *models.QuoteRequest) error {
	var lastErr error
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref, err := s.newReference()
		if err != nil {
			return newDatabaseError("Failed to generate reference ID", err)
		}
		quote.ID = 0
		quote.ReferenceID = ref

		err = s.db.WithContext(ctx).Create(quote).Error
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return newDatabaseError("Failed to save quote request", err)
		}
		lastErr = err
		logging.LogKV("warn", "reference ID collision, retrying", map[string]interface{}{
			"reference_id": ref,
			"attempt":      attempt,
		})
	}
	return newDatabaseError("Failed to allocate a unique reference ID", lastErr)
}

// SubmitProductInquiry validates and stores an inquiry about one product
func (s *InquiryService) SubmitProductInquiry(ctx context.Context, form forms.ProductInquiryForm) (*models.Inquiry, error) {
	form.Normalize()
	fields := map[string]string{}
	if err := validateForm(&form); err != nil {
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) || svcErr.Code != ErrCodeValidation {
			return nil, err
		}
		fields = svcErr.Fields
	}
	if form.ProductID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", *form.ProductID).Count(&count).Error; err != nil {
			return nil, newDatabaseError("Failed to look up product", err)
		}
		if count == 0 {
			fields["product_id"] = msgUnknownProduct
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	inquiry := form.Model()
	if err := s.db.WithContext(ctx).Create(&inquiry).Error; err != nil {
		return nil, newDatabaseError("Failed to save product inquiry", err)
	}

	metrics.RecordSubmission(metrics.KindProductInquiry)
	logging.LogKV("info", "product inquiry received", map[string]interface{}{
		"inquiry_id": inquiry.ID,
		"product_id": inquiry.ProductID,
	})
	return &inquiry, nil
}

func (s *InquiryService) storeUpload(ctx context.Context, prefix string, fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", newStorageError("Failed to read uploaded file", err)
	}
	defer src.Close()

	key := utils.DatedKey(prefix, fileHeader.Filename, s.now())
	if err := s.store.Save(ctx, key, src, utils.ContentType(fileHeader)); err != nil {
		return "", newStorageError("Failed to store uploaded file", err)
	}
	return key, nil
}

// ---------------------------------------------------------------------------
// Lists and detail views
// ---------------------------------------------------------------------------

func (s *InquiryService) contactQuery(ctx context.Context, filter *ContactFilter) (*gorm.DB, error) {
	filter.normalize()
	q := s.db.WithContext(ctx).Model(&models.ContactMessage{})
	if filter.Status != "" {
		if !models.ContactStatus(filter.Status).Valid() {
			return nil, invalidStatus(filter.Status)
		}
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Subject != "" {
		q = q.Where("subject = ?", filter.Subject)
	}
	if filter.IsRead != nil {
		q = q.Where("is_read = ?", *filter.IsRead)
	}
	return searchAny(q, filter.Search, "name", "email", "phone", "business_name", "message"), nil
}

// ListContactMessages returns one page of contact messages, newest first
func (s *InquiryService) ListContactMessages(ctx context.Context, filter ContactFilter) (*Page[models.ContactMessage], error) {
	q, err := s.contactQuery(ctx, &filter)
	if err != nil {
		return nil, err
	}
	return paginate[models.ContactMessage](q, filter.ListParams)
}

func (s *InquiryService) quoteQuery(ctx context.Context, filter *QuoteFilter) (*gorm.DB, error) {
	filter.normalize()
	q := s.db.WithContext(ctx).Model(&models.QuoteRequest{})
	if filter.Status != "" {
		if !models.QuoteStatus(filter.Status).Valid() {
			return nil, invalidStatus(filter.Status)
		}
		q = q.Where("status = ?", filter.Status)
	}
	if filter.BusinessType != "" {
		q = q.Where("business_type = ?", filter.BusinessType)
	}
	return searchAny(q, filter.Search, "name", "business_name", "email", "phone", "reference_id", "delivery_city"), nil
}

// ListQuoteRequests returns one page of quote requests, newest first
func (s *InquiryService) ListQuoteRequests(ctx context.Context, filter QuoteFilter) (*Page[models.QuoteRequest], error) {
	q, err := s.quoteQuery(ctx, &filter)
	if err != nil {
		return nil, err
	}
	return paginate[models.QuoteRequest](q, filter.ListParams)
}

// ListInquiries returns one page of product inquiries, newest first
func (s *InquiryService) ListInquiries(ctx context.Context, filter InquiryFilter) (*Page[models.Inquiry], error) {
	filter.normalize()
	q := s.db.WithContext(ctx).Model(&models.Inquiry{}).Preload("Product")
	if filter.Status != "" {
		if !models.InquiryStatus(filter.Status).Valid() {
			return nil, invalidStatus(filter.Status)
		}
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	q = searchAny(q, filter.Search, "name", "business_name", "email", "phone", "delivery_location")
	return paginate[models.Inquiry](q, filter.ListParams)
}

func newestRepliesFirst(db *gorm.DB) *gorm.DB {
	return db.Order("replied_at DESC").Order("id DESC")
}

// GetContactDetail returns a contact message with its replies, newest first.
// The first view marks the message as read.
func (s *InquiryService) GetContactDetail(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	err := s.db.WithContext(ctx).Preload("Replies", newestRepliesFirst).First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError(MsgContactNotFound)
	}
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve contact message", err)
	}

	if !msg.IsRead {
		if err := s.db.WithContext(ctx).Model(&msg).Update("is_read", true).Error; err != nil {
			return nil, newDatabaseError("Failed to mark contact message as read", err)
		}
		msg.IsRead = true
	}
	return &msg, nil
}

// GetQuoteDetail returns a quote request with its replies, newest first
func (s *InquiryService) GetQuoteDetail(ctx context.Context, id uint) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	err := s.db.WithContext(ctx).Preload("Replies", newestRepliesFirst).First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError(MsgQuoteNotFound)
	}
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve quote request", err)
	}
	return &quote, nil
}

// GetInquiry returns a product inquiry with its product
func (s *InquiryService) GetInquiry(ctx context.Context, id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.WithContext(ctx).Preload("Product").First(&inquiry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError(MsgInquiryNotFound)
	}
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve product inquiry", err)
	}
	return &inquiry, nil
}

// ---------------------------------------------------------------------------
// Status updates
// ---------------------------------------------------------------------------

func statusUpdates(status string, notes *string) map[string]interface{} {
	updates := map[string]interface{}{"status": status}
	if notes != nil {
		updates["admin_notes"] = *notes
	}
	return updates
}

// UpdateContactStatus sets the status and, when given, the admin notes
func (s *InquiryService) UpdateContactStatus(ctx context.Context, id uint, status string, notes *string) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := s.first(ctx, &msg, id, MsgContactNotFound); err != nil {
		return nil, err
	}
	next, err := msg.Status.TransitionTo(models.ContactStatus(status))
	if err != nil {
		return nil, invalidStatus(status)
	}
	if err := s.db.WithContext(ctx).Model(&msg).Updates(statusUpdates(string(next), notes)).Error; err != nil {
		return nil, newDatabaseError("Failed to update contact message", err)
	}
	msg.Status = next
	if notes != nil {
		msg.AdminNotes = *notes
	}
	return &msg, nil
}

// UpdateQuoteStatus sets the status and, when given, the admin notes
func (s *InquiryService) UpdateQuoteStatus(ctx context.Context, id uint, status string, notes *string) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	if err := s.first(ctx, &quote, id, MsgQuoteNotFound); err != nil {
		return nil, err
	}
	next, err := quote.Status.TransitionTo(models.QuoteStatus(status))
	if err != nil {
		return nil, invalidStatus(status)
	}
	if err := s.db.WithContext(ctx).Model(&quote).Updates(statusUpdates(string(next), notes)).Error; err != nil {
		return nil, newDatabaseError("Failed to update quote request", err)
	}
	quote.Status = next
	if notes != nil {
		quote.AdminNotes = *notes
	}
	return &quote, nil
}

// UpdateInquiryStatus sets the status and, when given, the admin notes
func (s *InquiryService) UpdateInquiryStatus(ctx context.Context, id uint, status string, notes *string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := s.first(ctx, &inquiry, id, MsgInquiryNotFound); err != nil {
		return nil, err
	}
	next, err := inquiry.Status.TransitionTo(models.InquiryStatus(status))
	if err != nil {
		return nil, invalidStatus(status)
	}
	if err := s.db.WithContext(ctx).Model(&inquiry).Updates(statusUpdates(string(next), notes)).Error; err != nil {
		return nil, newDatabaseError("Failed to update product inquiry", err)
	}
	inquiry.Status = next
	if notes != nil {
		inquiry.AdminNotes = *notes
	}
	return &inquiry, nil
}

// BulkUpdateStatus applies one status to many records of kind and returns the
// number of rows changed
func (s *InquiryService) BulkUpdateStatus(ctx context.Context, kind string, ids []uint, status string) (int64, error) {
	var model interface{}
	switch kind {
	case metrics.KindContact:
		if !models.ContactStatus(status).Valid() {
			return 0, invalidStatus(status)
		}
		model = &models.ContactMessage{}
	case metrics.KindQuote:
		if !models.QuoteStatus(status).Valid() {
			return 0, invalidStatus(status)
		}
		model = &models.QuoteRequest{}
	case metrics.KindProductInquiry:
		if !models.InquiryStatus(status).Valid() {
			return 0, invalidStatus(status)
		}
		model = &models.Inquiry{}
	default:
		return 0, NewNotFoundError("Unknown record type")
	}
	if len(ids) == 0 {
		return 0, NewValidationError(map[string]string{"ids": "This field is required."})
	}
	res := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Update("status", status)
	if res.Error != nil {
		return 0, newDatabaseError("Failed to update records", res.Error)
	}
	return res.RowsAffected, nil
}

// SetContactRead marks contact messages read or unread
func (s *InquiryService) SetContactRead(ctx context.Context, ids []uint, read bool) (int64, error) {
	if len(ids) == 0 {
		return 0, NewValidationError(map[string]string{"ids": "This field is required."})
	}
	res := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id IN ?", ids).Update("is_read", read)
	if res.Error != nil {
		return 0, newDatabaseError("Failed to update contact messages", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *InquiryService) first(ctx context.Context, dest interface{}, id uint, notFound string) error {
	err := s.db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(notFound)
	}
	if err != nil {
		return newDatabaseError("Failed to retrieve record", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

// DeleteContactMessage permanently removes a message, its replies and their attachments
func (s *InquiryService) DeleteContactMessage(ctx context.Context, id uint) error {
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.ContactMessage
		if err := tx.First(&msg, id).Error; err != nil {
			return err
		}
		var err error
		if keys, err = replyAttachmentKeys(tx, "contact_message_id", id); err != nil {
			return err
		}
		if err := tx.Where("contact_message_id = ?", id).Delete(&models.InquiryReply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&msg).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(MsgContactNotFound)
	}
	if err != nil {
		return newDatabaseError("Failed to delete contact message", err)
	}

	deleteBlobs(ctx, s.store, keys)
	logging.LogKV("info", "contact message deleted", map[string]interface{}{"contact_message_id": id})
	return nil
}

// DeleteQuoteRequest permanently removes a quote, its replies, their
// attachments and the uploaded logo
func (s *InquiryService) DeleteQuoteRequest(ctx context.Context, id uint) error {
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quote models.QuoteRequest
		if err := tx.First(&quote, id).Error; err != nil {
			return err
		}
		var err error
		if keys, err = replyAttachmentKeys(tx, "quote_request_id", id); err != nil {
			return err
		}
		if quote.LogoKey != nil {
			keys = append(keys, *quote.LogoKey)
		}
		if err := tx.Where("quote_request_id = ?", id).Delete(&models.InquiryReply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&quote).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(MsgQuoteNotFound)
	}
	if err != nil {
		return newDatabaseError("Failed to delete quote request", err)
	}

	deleteBlobs(ctx, s.store, keys)
	logging.LogKV("info", "quote request deleted", map[string]interface{}{"quote_request_id": id})
	return nil
}

func replyAttachmentKeys(tx *gorm.DB, column string, id uint) ([]string, error) {
	var keys []string
	err := tx.Model(&models.InquiryReply{}).
		Where(column+" = ? AND attachment_key IS NOT NULL", id).
		Pluck("attachment_key", &keys).Error
	return keys, err
}

// ---------------------------------------------------------------------------
// Stored files
// ---------------------------------------------------------------------------

// StoredFile is an opened blob with its download name
type StoredFile struct {
	Name    string
	Content io.ReadCloser
}

// OpenReplyAttachment opens the file sent with a reply
func (s *InquiryService) OpenReplyAttachment(ctx context.Context, replyID uint) (*StoredFile, error) {
	var reply models.InquiryReply
	if err := s.first(ctx, &reply, replyID, MsgReplyNotFound); err != nil {
		return nil, err
	}
	if !reply.HasAttachment() {
		return nil, NewNotFoundError("Reply has no attachment")
	}
	return s.open(ctx, *reply.AttachmentKey, reply.AttachmentName)
}

// OpenQuoteLogo opens the logo uploaded with a quote request
func (s *InquiryService) OpenQuoteLogo(ctx context.Context, quoteID uint) (*StoredFile, error) {
	var quote models.QuoteRequest
	if err := s.first(ctx, &quote, quoteID, MsgQuoteNotFound); err != nil {
		return nil, err
	}
	if quote.LogoKey == nil || *quote.LogoKey == "" {
		return nil, NewNotFoundError("Quote request has no logo")
	}
	name := *quote.LogoKey
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return s.open(ctx, *quote.LogoKey, name)
}

func (s *InquiryService) open(ctx context.Context, key, name string) (*StoredFile, error) {
	r, err := s.store.Open(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, NewNotFoundError("File not found")
	}
	if err != nil {
		return nil, newStorageError("Failed to open stored file", err)
	}
	return &StoredFile{Name: name, Content: r}, nil
}
