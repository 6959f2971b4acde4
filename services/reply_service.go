package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/nageshcare/nageshcare-api/forms"
	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/metrics"
	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/utils"
	"gorm.io/gorm"
)

// ReplyRequest is one staff reply to a contact message or quote request
type ReplyRequest struct {
	InquiryType models.InquiryType
	InquiryID   uint
	Subject     string
	Message     string
	RepliedBy   string
	Attachment  *multipart.FileHeader
}

// ReplyResult is the outcome of a send attempt. The audit row is always
// populated, including when the send failed.
type ReplyResult struct {
	Success        bool                 `json:"success"`
	Reply          *models.InquiryReply `json:"reply"`
	RecipientName  string               `json:"recipient_name"`
	RecipientEmail string               `json:"recipient_email"`
	Error          string               `json:"error,omitempty"`
}

type recipient struct {
	name  string
	email string
}

// SendReply records an audit row, sends the mail and records the outcome.
// A failed send is reported in the result, not as an error; errors are
// reserved for failures before the send is attempted.
func (s *InquiryService) SendReply(ctx context.Context, req ReplyRequest) (*ReplyResult, error) {
	form := forms.ReplyForm{
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	fields := map[string]string{}
	if err := forms.Validate(&form); err != nil {
		var fe forms.FieldErrors
		if !errors.As(err, &fe) {
			return nil, err
		}
		fields = fe
	}
	if req.Attachment != nil {
		if err := utils.ValidateUpload(req.Attachment, utils.AttachmentExtensions); err != nil {
			fields["attachment"] = err.Error()
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	cfg, err := s.settings.MailConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, newMailNotConfiguredError(MsgMailNotConfigured)
	}

	to, err := s.resolveRecipient(ctx, req.InquiryType, req.InquiryID)
	if err != nil {
		return nil, err
	}

	body := form.Message
	if cfg.Signature != "" {
		body += "\n\n" + cfg.Signature
	}

	reply := models.InquiryReply{
		InquiryType:  req.InquiryType,
		ReplyFrom:    cfg.Username,
		ReplyTo:      to.email,
		ReplySubject: form.Subject,
		ReplyMessage: body,
		RepliedBy:    req.RepliedBy,
	}
	id := req.InquiryID
	if req.InquiryType == models.InquiryTypeContact {
		reply.ContactMessageID = &id
	} else {
		reply.QuoteRequestID = &id
	}

	if req.Attachment != nil {
		key, err := s.storeUpload(ctx, replyAttachmentsPrefix, req.Attachment)
		if err != nil {
			return nil, err
		}
		reply.AttachmentKey = &key
		reply.AttachmentName = utils.SafeFilename(req.Attachment.Filename)
	}

	if err := s.db.WithContext(ctx).Create(&reply).Error; err != nil {
		if reply.AttachmentKey != nil {
			deleteBlobs(ctx, s.store, []string{*reply.AttachmentKey})
		}
		return nil, newDatabaseError("Failed to record reply", err)
	}

	mail := OutgoingMail{
		From:    cfg.Username,
		To:      to.email,
		ToName:  to.name,
		Subject: reply.ReplySubject,
		Body:    body,
	}
	if reply.HasAttachment() {
		key := *reply.AttachmentKey
		mail.Attachment = &MailAttachment{
			Name: reply.AttachmentName,
			Open: func() (io.ReadCloser, error) { return s.store.Open(ctx, key) },
		}
	}

	result := &ReplyResult{Reply: &reply, RecipientName: to.name, RecipientEmail: to.email}
	sendErr := s.mailer.Send(ctx, *cfg, mail)
	metrics.RecordReply(string(req.InquiryType), sendErr == nil)

	if sendErr != nil {
		reply.ErrorMessage = sendErr.Error()
		if err := s.db.WithContext(ctx).Model(&reply).Update("error_message", reply.ErrorMessage).Error; err != nil {
			logging.LogKV("error", "failed to record reply failure", map[string]interface{}{
				"reply_id": reply.ID,
				"error":    err.Error(),
			})
		}
		result.Error = "Failed to send email: " + sendErr.Error()
		logging.LogKV("warn", "reply email failed", map[string]interface{}{
			"reply_id":     reply.ID,
			"inquiry_type": reply.InquiryType,
			"inquiry_id":   req.InquiryID,
			"error":        sendErr.Error(),
		})
		return result, nil
	}

	reply.EmailSentSuccessfully = true
	result.Success = true
	if err := s.db.WithContext(ctx).Model(&reply).Update("email_sent_successfully", true).Error; err != nil {
		logging.LogKV("error", "failed to record reply success", map[string]interface{}{
			"reply_id": reply.ID,
			"error":    err.Error(),
		})
	}
	if req.InquiryType == models.InquiryTypeContact {
		if err := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", true).Error; err != nil {
			logging.LogKV("error", "failed to mark contact message read", map[string]interface{}{
				"contact_message_id": id,
				"error":              err.Error(),
			})
		}
	}

	logging.LogKV("info", "reply email sent", map[string]interface{}{
		"reply_id":     reply.ID,
		"inquiry_type": reply.InquiryType,
		"inquiry_id":   req.InquiryID,
		"replied_by":   reply.RepliedBy,
	})
	return result, nil
}

func (s *InquiryService) resolveRecipient(ctx context.Context, kind models.InquiryType, id uint) (*recipient, error) {
	db := s.db.WithContext(ctx)
	switch kind {
	case models.InquiryTypeContact:
		var msg models.ContactMessage
		err := db.Select("id", "name", "email").First(&msg, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(MsgContactNotFound)
		}
		if err != nil {
			return nil, newDatabaseError("Failed to retrieve contact message", err)
		}
		return &recipient{name: msg.Name, email: msg.Email}, nil
	case models.InquiryTypeQuote:
		var quote models.QuoteRequest
		err := db.Select("id", "name", "email").First(&quote, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(MsgQuoteNotFound)
		}
		if err != nil {
			return nil, newDatabaseError("Failed to retrieve quote request", err)
		}
		return &recipient{name: quote.Name, email: quote.Email}, nil
	default:
		return nil, NewNotFoundError(MsgInvalidInquiryType)
	}
}

// ApplyReplyOutcome advances the parent status after a successful reply and
// returns the status the parent ends up in. Failed replies leave it alone.
func (s *InquiryService) ApplyReplyOutcome(ctx context.Context, result *ReplyResult) (string, error) {
	if result == nil || result.Reply == nil {
		return "", nil
	}
	reply := result.Reply
	db := s.db.WithContext(ctx)

	switch reply.InquiryType {
	case models.InquiryTypeContact:
		var msg models.ContactMessage
		if err := s.first(ctx, &msg, *reply.ContactMessageID, MsgContactNotFound); err != nil {
			return "", err
		}
		if !result.Success {
			return string(msg.Status), nil
		}
		next, changed := msg.Status.AfterReply()
		if changed {
			if err := db.Model(&msg).Update("status", next).Error; err != nil {
				return "", newDatabaseError("Failed to update contact message status", err)
			}
		}
		return string(next), nil
	case models.InquiryTypeQuote:
		var quote models.QuoteRequest
		if err := s.first(ctx, &quote, *reply.QuoteRequestID, MsgQuoteNotFound); err != nil {
			return "", err
		}
		if !result.Success {
			return string(quote.Status), nil
		}
		next, changed := quote.Status.AfterReply()
		if changed {
			if err := db.Model(&quote).Update("status", next).Error; err != nil {
				return "", newDatabaseError("Failed to update quote request status", err)
			}
		}
		return string(next), nil
	}
	return "", NewNotFoundError(MsgInvalidInquiryType)
}

// ListReplies returns the reply history of one parent, newest first
func (s *InquiryService) ListReplies(ctx context.Context, kind models.InquiryType, id uint) ([]models.InquiryReply, error) {
	var column string
	switch kind {
	case models.InquiryTypeContact:
		column = "contact_message_id"
	case models.InquiryTypeQuote:
		column = "quote_request_id"
	default:
		return nil, NewNotFoundError(MsgInvalidInquiryType)
	}
	if _, err := s.resolveRecipient(ctx, kind, id); err != nil {
		return nil, err
	}
	replies := []models.InquiryReply{}
	err := newestRepliesFirst(s.db.WithContext(ctx).Where(column+" = ?", id)).Find(&replies).Error
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve replies", err)
	}
	return replies, nil
}
