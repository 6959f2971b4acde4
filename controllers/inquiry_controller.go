package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/forms"
	"github.com/nageshcare/nageshcare-api/services"
)

// Messages shown after a successful public submission
const (
	MsgContactReceived = "Thank you for contacting us! We will get back to you soon."
	MsgInquiryReceived = "Thank you! We will contact you soon about this product."
	msgQuoteReceived   = "Quote request submitted successfully! Your reference ID is: %s. We will contact you within 24-48 hours."
)

// InquiryController handles the public contact, quote and product inquiry forms
type InquiryController struct {
	inquiries *services.InquiryService
}

// NewInquiryController creates a public inquiry controller
func NewInquiryController(inquiries *services.InquiryService) *InquiryController {
	return &InquiryController{inquiries: inquiries}
}

// QuoteReceivedMessage is the confirmation shown for a new quote request
func QuoteReceivedMessage(referenceID string) string {
	return fmt.Sprintf(msgQuoteReceived, referenceID)
}

// SubmitContact handles POST /api/v1/contact (form or JSON)
func (ic *InquiryController) SubmitContact(c *gin.Context) {
	var form forms.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := ic.inquiries.SubmitContact(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": MsgContactReceived,
		"data":    msg,
	})
}

// SubmitQuoteRequest handles POST /api/v1/quote-requests. Multipart bodies
// may carry a logo in the logo_file field.
func (ic *InquiryController) SubmitQuoteRequest(c *gin.Context) {
	var form forms.QuoteRequestForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	logo, err := c.FormFile("logo_file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		respondBindError(c, err)
		return
	}

	quote, err := ic.inquiries.SubmitQuoteRequest(c.Request.Context(), form, logo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": QuoteReceivedMessage(quote.ReferenceID),
		"data":    quote,
	})
}

// SubmitProductInquiry handles POST /api/v1/inquiries. Requests sent with
// X-Requested-With: XMLHttpRequest get the compact {success, message|errors} shape.
func (ic *InquiryController) SubmitProductInquiry(c *gin.Context) {
	ajax := c.GetHeader("X-Requested-With") == "XMLHttpRequest"

	var form forms.ProductInquiryForm
	if err := c.ShouldBind(&form); err != nil {
		if ajax {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"errors":  gin.H{"__all__": "Invalid request data"},
			})
			return
		}
		respondBindError(c, err)
		return
	}

	inquiry, err := ic.inquiries.SubmitProductInquiry(c.Request.Context(), form)
	if ajax {
		var svcErr *services.ServiceError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": MsgInquiryReceived,
			})
		case errors.As(err, &svcErr) && svcErr.Code == services.ErrCodeValidation:
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"errors":  svcErr.Fields,
			})
		default:
			respondError(c, err)
		}
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": MsgInquiryReceived,
		"data":    inquiry,
	})
}
