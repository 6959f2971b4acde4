package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/metrics"
	"github.com/nageshcare/nageshcare-api/middleware"
	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/services"
)

// Staff actions accepted on a record's detail endpoint
const (
	ActionUpdateStatus = "update_status"
	ActionSendReply    = "send_reply"
)

// MsgStatusUpdated confirms a status change
const MsgStatusUpdated = "Status updated successfully!"

// staffActionForm is the body of POST on a contact message, quote request or
// product inquiry. Which fields apply depends on Action.
type staffActionForm struct {
	Action     string  `json:"action" form:"action"`
	Status     string  `json:"status" form:"status"`
	AdminNotes *string `json:"admin_notes" form:"admin_notes"`
	Subject    string  `json:"subject" form:"subject"`
	Message    string  `json:"message" form:"message"`
}

// bulkActionForm is the body of a bulk action on a list view
type bulkActionForm struct {
	Action string `json:"action" form:"action"`
	IDs    []uint `json:"ids" form:"ids"`
	Status string `json:"status" form:"status"`
}

// StaffInquiryController serves the staff triage views: lists, details,
// status changes, replies, exports and downloads
type StaffInquiryController struct {
	inquiries *services.InquiryService
	now       func() time.Time
}

// NewStaffInquiryController creates a staff inquiry controller
func NewStaffInquiryController(inquiries *services.InquiryService) *StaffInquiryController {
	return &StaffInquiryController{
		inquiries: inquiries,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard handles GET /api/v1/staff/dashboard
func (sc *StaffInquiryController) Dashboard(c *gin.Context) {
	stats, err := sc.inquiries.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

func contactFilter(c *gin.Context) services.ContactFilter {
	return services.ContactFilter{
		ListParams: listParams(c),
		Subject:    c.Query("subject"),
		IsRead:     optionalBool(c.Query("is_read")),
	}
}

func quoteFilter(c *gin.Context) services.QuoteFilter {
	return services.QuoteFilter{
		ListParams:   listParams(c),
		BusinessType: c.Query("business_type"),
	}
}

// ListContactMessages handles GET /api/v1/staff/contact-messages
func (sc *StaffInquiryController) ListContactMessages(c *gin.Context) {
	page, err := sc.inquiries.ListContactMessages(c.Request.Context(), contactFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}

// GetContactMessage handles GET /api/v1/staff/contact-messages/:id. Viewing
// marks the message read.
func (sc *StaffInquiryController) GetContactMessage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	msg, err := sc.inquiries.GetContactDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    msg,
	})
}

// PostContactMessage handles POST /api/v1/staff/contact-messages/:id
func (sc *StaffInquiryController) PostContactMessage(c *gin.Context) {
	sc.recordAction(c, models.InquiryTypeContact)
}

// DeleteContactMessage handles DELETE /api/v1/staff/contact-messages/:id
func (sc *StaffInquiryController) DeleteContactMessage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := sc.inquiries.DeleteContactMessage(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contact message deleted successfully!",
	})
}

// ExportContactMessages handles GET /api/v1/staff/contact-messages/export
func (sc *StaffInquiryController) ExportContactMessages(c *gin.Context) {
	var buf bytes.Buffer
	if err := sc.inquiries.ExportContactsCSV(c.Request.Context(), &buf, contactFilter(c)); err != nil {
		respondError(c, err)
		return
	}
	sc.sendCSV(c, "contact_messages", buf.Bytes())
}

// BulkContactMessages handles POST /api/v1/staff/contact-messages/bulk with
// action mark_read, mark_unread or update_status
func (sc *StaffInquiryController) BulkContactMessages(c *gin.Context) {
	var form bulkActionForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		updated int64
		err     error
	)
	switch form.Action {
	case "mark_read":
		updated, err = sc.inquiries.SetContactRead(ctx, form.IDs, true)
	case "mark_unread":
		updated, err = sc.inquiries.SetContactRead(ctx, form.IDs, false)
	case ActionUpdateStatus:
		updated, err = sc.inquiries.BulkUpdateStatus(ctx, metrics.KindContact, form.IDs, form.Status)
	default:
		err = invalidAction(form.Action)
	}
	sc.bulkResult(c, updated, err)
}

// ListQuoteRequests handles GET /api/v1/staff/quote-requests
func (sc *StaffInquiryController) ListQuoteRequests(c *gin.Context) {
	page, err := sc.inquiries.ListQuoteRequests(c.Request.Context(), quoteFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}

// GetQuoteRequest handles GET /api/v1/staff/quote-requests/:id
func (sc *StaffInquiryController) GetQuoteRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	quote, err := sc.inquiries.GetQuoteDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

// PostQuoteRequest handles POST /api/v1/staff/quote-requests/:id
func (sc *StaffInquiryController) PostQuoteRequest(c *gin.Context) {
	sc.recordAction(c, models.InquiryTypeQuote)
}

// DeleteQuoteRequest handles DELETE /api/v1/staff/quote-requests/:id
func (sc *StaffInquiryController) DeleteQuoteRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := sc.inquiries.DeleteQuoteRequest(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quote request deleted successfully!",
	})
}

// ExportQuoteRequests handles GET /api/v1/staff/quote-requests/export
func (sc *StaffInquiryController) ExportQuoteRequests(c *gin.Context) {
	var buf bytes.Buffer
	if err := sc.inquiries.ExportQuotesCSV(c.Request.Context(), &buf, quoteFilter(c)); err != nil {
		respondError(c, err)
		return
	}
	sc.sendCSV(c, "quote_requests", buf.Bytes())
}

// BulkQuoteRequests handles POST /api/v1/staff/quote-requests/bulk
func (sc *StaffInquiryController) BulkQuoteRequests(c *gin.Context) {
	sc.bulkStatus(c, metrics.KindQuote)
}

// GetQuoteLogo handles GET /api/v1/staff/quote-requests/:id/logo
func (sc *StaffInquiryController) GetQuoteLogo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	file, err := sc.inquiries.OpenQuoteLogo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file)
}

// ListInquiries handles GET /api/v1/staff/inquiries
func (sc *StaffInquiryController) ListInquiries(c *gin.Context) {
	filter := services.InquiryFilter{ListParams: listParams(c)}
	if raw := c.Query("product_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			productID := uint(id)
			filter.ProductID = &productID
		}
	}
	page, err := sc.inquiries.ListInquiries(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}

// GetInquiry handles GET /api/v1/staff/inquiries/:id
func (sc *StaffInquiryController) GetInquiry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	inquiry, err := sc.inquiries.GetInquiry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    inquiry,
	})
}

// PostInquiry handles POST /api/v1/staff/inquiries/:id. Product inquiries
// are answered outside the system, so only update_status is accepted.
func (sc *StaffInquiryController) PostInquiry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var form staffActionForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}
	if form.Action != ActionUpdateStatus {
		respondError(c, invalidAction(form.Action))
		return
	}
	inquiry, err := sc.inquiries.UpdateInquiryStatus(c.Request.Context(), id, form.Status, form.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": MsgStatusUpdated,
		"data":    inquiry,
	})
}

// BulkInquiries handles POST /api/v1/staff/inquiries/bulk
func (sc *StaffInquiryController) BulkInquiries(c *gin.Context) {
	sc.bulkStatus(c, metrics.KindProductInquiry)
}

// DownloadReplyAttachment handles GET /api/v1/staff/replies/:id/attachment
func (sc *StaffInquiryController) DownloadReplyAttachment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	file, err := sc.inquiries.OpenReplyAttachment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file)
}

// recordAction dispatches update_status and send_reply for contact messages
// and quote requests
func (sc *StaffInquiryController) recordAction(c *gin.Context, kind models.InquiryType) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var form staffActionForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	switch form.Action {
	case ActionUpdateStatus:
		var (
			record interface{}
			err    error
		)
		if kind == models.InquiryTypeContact {
			record, err = sc.inquiries.UpdateContactStatus(ctx, id, form.Status, form.AdminNotes)
		} else {
			record, err = sc.inquiries.UpdateQuoteStatus(ctx, id, form.Status, form.AdminNotes)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": MsgStatusUpdated,
			"data":    record,
		})
	case ActionSendReply:
		sc.sendReply(c, kind, id, form)
	default:
		respondError(c, invalidAction(form.Action))
	}
}

func (sc *StaffInquiryController) sendReply(c *gin.Context, kind models.InquiryType, id uint, form staffActionForm) {
	attachment, err := c.FormFile("attachment")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	result, err := sc.inquiries.SendReply(ctx, services.ReplyRequest{
		InquiryType: kind,
		InquiryID:   id,
		Subject:     form.Subject,
		Message:     form.Message,
		RepliedBy:   middleware.GetStaffIdentity(c),
		Attachment:  attachment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	data := gin.H{
		"reply":           result.Reply,
		"recipient_name":  result.RecipientName,
		"recipient_email": result.RecipientEmail,
	}
	// the mail outcome is already recorded, so a status failure is reported
	// alongside it rather than replacing it
	status, err := sc.inquiries.ApplyReplyOutcome(ctx, result)
	if err != nil {
		logging.LogKV("error", "reply status update failed", map[string]interface{}{
			"reply_id":     result.Reply.ID,
			"inquiry_type": kind,
			"inquiry_id":   id,
			"email_sent":   result.Success,
			"error":        err.Error(),
		})
		data["status_error"] = errorBody(asServiceError(err))
	}
	data["status"] = status
	if !result.Success {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    services.ErrCodeMailSendFailed,
				"message": result.Error,
			},
			"data": data,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Email sent successfully to %s (%s)", result.RecipientName, result.RecipientEmail),
		"data":    data,
	})
}

// bulkStatus applies update_status to many quote requests or product inquiries
func (sc *StaffInquiryController) bulkStatus(c *gin.Context, kind string) {
	var form bulkActionForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}
	if form.Action != ActionUpdateStatus {
		sc.bulkResult(c, 0, invalidAction(form.Action))
		return
	}
	updated, err := sc.inquiries.BulkUpdateStatus(c.Request.Context(), kind, form.IDs, form.Status)
	sc.bulkResult(c, updated, err)
}

func (sc *StaffInquiryController) bulkResult(c *gin.Context, updated int64, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d records updated", updated),
		"data":    gin.H{"updated": updated},
	})
}

func (sc *StaffInquiryController) sendCSV(c *gin.Context, kind string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFilename(kind, sc.now())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", content)
}

func invalidAction(action string) error {
	if action == "" {
		return services.NewValidationError(map[string]string{"action": "This field is required."})
	}
	return services.NewValidationError(map[string]string{"action": fmt.Sprintf("Unknown action %q", action)})
}

// sendFile streams a stored blob as a download
func sendFile(c *gin.Context, file *services.StoredFile) {
	defer file.Content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, file.Content, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.Name),
	})
}
