package forms

import (
	"strings"

	"github.com/nageshcare/nageshcare-api/models"
)

// ContactForm is the public contact form payload
type ContactForm struct {
	Name                   string `json:"name" form:"name" validate:"required,max=200"`
	Email                  string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone                  string `json:"phone" form:"phone" validate:"required,max=20"`
	BusinessName           string `json:"business_name" form:"business_name" validate:"max=200"`
	Subject                string `json:"subject" form:"subject" validate:"required,oneof=general product_info bulk_order custom_branding partnership complaint other"`
	ProductInterest        string `json:"product_interest" form:"product_interest" validate:"max=200"`
	Message                string `json:"message" form:"message" validate:"required"`
	PreferredContactMethod string `json:"preferred_contact_method" form:"preferred_contact_method" validate:"omitempty,oneof=email phone whatsapp"`
	BestTimeToCall         string `json:"best_time_to_call" form:"best_time_to_call" validate:"max=100"`
}

// Normalize trims whitespace and fills defaults
func (f *ContactForm) Normalize() {
	trim(&f.Name, &f.Email, &f.Phone, &f.BusinessName, &f.Subject, &f.ProductInterest,
		&f.Message, &f.PreferredContactMethod, &f.BestTimeToCall)
	if f.PreferredContactMethod == "" {
		f.PreferredContactMethod = "email"
	}
}

// Model builds a new ContactMessage in its initial state
func (f *ContactForm) Model() models.ContactMessage {
	return models.ContactMessage{
		Name:                   f.Name,
		Email:                  f.Email,
		Phone:                  f.Phone,
		BusinessName:           f.BusinessName,
		Subject:                f.Subject,
		ProductInterest:        f.ProductInterest,
		Message:                f.Message,
		PreferredContactMethod: f.PreferredContactMethod,
		BestTimeToCall:         f.BestTimeToCall,
		Status:                 models.ContactStatusNew,
		IsRead:                 false,
	}
}

// QuoteRequestForm is the public request-a-quote payload
type QuoteRequestForm struct {
	Name            string `json:"name" form:"name" validate:"required,max=200"`
	BusinessName    string `json:"business_name" form:"business_name" validate:"required,max=300"`
	BusinessType    string `json:"business_type" form:"business_type" validate:"required,oneof=retail_store supermarket hotel_resort spa_salon temple_ashram yoga_studio distributor online_seller event_planner corporate other"`
	YearsInBusiness string `json:"years_in_business" form:"years_in_business" validate:"max=50"`
	BusinessWebsite string `json:"business_website" form:"business_website" validate:"omitempty,url,max=200"`
	GSTNumber       string `json:"gst_number" form:"gst_number" validate:"max=50"`

	Email                  string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone                  string `json:"phone" form:"phone" validate:"required,max=20"`
	WhatsappNumber         string `json:"whatsapp_number" form:"whatsapp_number" validate:"max=20"`
	AlternativeContact     string `json:"alternative_contact" form:"alternative_contact" validate:"max=20"`
	PreferredContactMethod string `json:"preferred_contact_method" form:"preferred_contact_method" validate:"omitempty,oneof=email phone whatsapp any"`
	BestTimeToReach        string `json:"best_time_to_reach" form:"best_time_to_reach" validate:"max=200"`

	ProductInterests string `json:"product_interests" form:"product_interests" validate:"required"`
	TissueVariant    string `json:"tissue_variant" form:"tissue_variant" validate:"max=200"`
	TissueFragrance  string `json:"tissue_fragrance" form:"tissue_fragrance" validate:"max=200"`
	TissueQuantity   string `json:"tissue_quantity" form:"tissue_quantity" validate:"max=200"`
	DhoopPackSize    string `json:"dhoop_pack_size" form:"dhoop_pack_size" validate:"max=200"`
	DhoopFragrance   string `json:"dhoop_fragrance" form:"dhoop_fragrance" validate:"max=200"`
	DhoopQuantity    string `json:"dhoop_quantity" form:"dhoop_quantity" validate:"max=200"`

	OrderFrequency   string `json:"order_frequency" form:"order_frequency" validate:"omitempty,oneof=one_time monthly quarterly biannual trial_based"`
	Timeline         string `json:"timeline" form:"timeline" validate:"max=100"`
	SampleOrderFirst bool   `json:"sample_order_first" form:"sample_order_first"`

	CustomBrandingRequired bool   `json:"custom_branding_required" form:"custom_branding_required"`
	BrandName              string `json:"brand_name" form:"brand_name" validate:"max=200"`
	HasLogo                bool   `json:"has_logo" form:"has_logo"`
	BrandingRequirements   string `json:"branding_requirements" form:"branding_requirements"`

	DeliveryCity                string `json:"delivery_city" form:"delivery_city" validate:"required,max=100"`
	DeliveryState               string `json:"delivery_state" form:"delivery_state" validate:"required,max=100"`
	DeliveryPin                 string `json:"delivery_pin" form:"delivery_pin" validate:"required,max=10"`
	DeliveryAddressType         string `json:"delivery_address_type" form:"delivery_address_type" validate:"max=100"`
	SpecialDeliveryRequirements string `json:"special_delivery_requirements" form:"special_delivery_requirements"`

	BudgetRange            string `json:"budget_range" form:"budget_range" validate:"max=100"`
	PaymentTermsPreference string `json:"payment_terms_preference" form:"payment_terms_preference" validate:"max=200"`

	HowHeardAboutUs      string `json:"how_heard_about_us" form:"how_heard_about_us" validate:"max=200"`
	SpecificRequirements string `json:"specific_requirements" form:"specific_requirements"`
	WantsCallDiscussion  bool   `json:"wants_call_discussion" form:"wants_call_discussion"`

	AgreedToContact bool `json:"agreed_to_contact" form:"agreed_to_contact" validate:"required"`
	WantsUpdates    bool `json:"wants_updates" form:"wants_updates"`
}

// Normalize trims whitespace and fills defaults
func (f *QuoteRequestForm) Normalize() {
	trim(&f.Name, &f.BusinessName, &f.BusinessType, &f.YearsInBusiness, &f.BusinessWebsite, &f.GSTNumber,
		&f.Email, &f.Phone, &f.WhatsappNumber, &f.AlternativeContact, &f.PreferredContactMethod, &f.BestTimeToReach,
		&f.ProductInterests, &f.TissueVariant, &f.TissueFragrance, &f.TissueQuantity,
		&f.DhoopPackSize, &f.DhoopFragrance, &f.DhoopQuantity, &f.OrderFrequency, &f.Timeline,
		&f.BrandName, &f.BrandingRequirements, &f.DeliveryCity, &f.DeliveryState, &f.DeliveryPin,
		&f.DeliveryAddressType, &f.SpecialDeliveryRequirements, &f.BudgetRange, &f.PaymentTermsPreference,
		&f.HowHeardAboutUs, &f.SpecificRequirements)
	if f.PreferredContactMethod == "" {
		f.PreferredContactMethod = "email"
	}
}

// Model builds a new QuoteRequest in its initial state. The reference ID is
// assigned when the row is first saved.
func (f *QuoteRequestForm) Model() models.QuoteRequest {
	return models.QuoteRequest{
		Name:                        f.Name,
		BusinessName:                f.BusinessName,
		BusinessType:                f.BusinessType,
		YearsInBusiness:             f.YearsInBusiness,
		BusinessWebsite:             f.BusinessWebsite,
		GSTNumber:                   f.GSTNumber,
		Email:                       f.Email,
		Phone:                       f.Phone,
		WhatsappNumber:              f.WhatsappNumber,
		AlternativeContact:          f.AlternativeContact,
		PreferredContactMethod:      f.PreferredContactMethod,
		BestTimeToReach:             f.BestTimeToReach,
		ProductInterests:            f.ProductInterests,
		TissueVariant:               f.TissueVariant,
		TissueFragrance:             f.TissueFragrance,
		TissueQuantity:              f.TissueQuantity,
		DhoopPackSize:               f.DhoopPackSize,
		DhoopFragrance:              f.DhoopFragrance,
		DhoopQuantity:               f.DhoopQuantity,
		OrderFrequency:              f.OrderFrequency,
		Timeline:                    f.Timeline,
		SampleOrderFirst:            f.SampleOrderFirst,
		CustomBrandingRequired:      f.CustomBrandingRequired,
		BrandName:                   f.BrandName,
		HasLogo:                     f.HasLogo,
		BrandingRequirements:        f.BrandingRequirements,
		DeliveryCity:                f.DeliveryCity,
		DeliveryState:               f.DeliveryState,
		DeliveryPin:                 f.DeliveryPin,
		DeliveryAddressType:         f.DeliveryAddressType,
		SpecialDeliveryRequirements: f.SpecialDeliveryRequirements,
		BudgetRange:                 f.BudgetRange,
		PaymentTermsPreference:      f.PaymentTermsPreference,
		HowHeardAboutUs:             f.HowHeardAboutUs,
		SpecificRequirements:        f.SpecificRequirements,
		WantsCallDiscussion:         f.WantsCallDiscussion,
		AgreedToContact:             f.AgreedToContact,
		WantsUpdates:                f.WantsUpdates,
		Status:                      models.QuoteStatusNew,
	}
}

// ProductInquiryForm is the inquiry form shown on a product detail page
type ProductInquiryForm struct {
	ProductID              *uint  `json:"product_id" form:"product_id"`
	Name                   string `json:"name" form:"name" validate:"required,max=200"`
	BusinessName           string `json:"business_name" form:"business_name" validate:"required,max=200"`
	Email                  string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone                  string `json:"phone" form:"phone" validate:"required,max=20"`
	WhatsappNumber         string `json:"whatsapp_number" form:"whatsapp_number" validate:"max=20"`
	QuantityNeeded         string `json:"quantity_needed" form:"quantity_needed" validate:"required,max=100"`
	PreferredVariant       string `json:"preferred_variant" form:"preferred_variant" validate:"max=200"`
	FragrancePreference    string `json:"fragrance_preference" form:"fragrance_preference" validate:"max=200"`
	CustomBrandingRequired bool   `json:"custom_branding_required" form:"custom_branding_required"`
	DeliveryLocation       string `json:"delivery_location" form:"delivery_location" validate:"required,max=300"`
	AdditionalRequirements string `json:"additional_requirements" form:"additional_requirements"`
}

// Normalize trims whitespace
func (f *ProductInquiryForm) Normalize() {
	trim(&f.Name, &f.BusinessName, &f.Email, &f.Phone, &f.WhatsappNumber, &f.QuantityNeeded,
		&f.PreferredVariant, &f.FragrancePreference, &f.DeliveryLocation, &f.AdditionalRequirements)
}

// Model builds a new Inquiry in its initial state
func (f *ProductInquiryForm) Model() models.Inquiry {
	return models.Inquiry{
		ProductID:              f.ProductID,
		Name:                   f.Name,
		BusinessName:           f.BusinessName,
		Email:                  f.Email,
		Phone:                  f.Phone,
		WhatsappNumber:         f.WhatsappNumber,
		QuantityNeeded:         f.QuantityNeeded,
		PreferredVariant:       f.PreferredVariant,
		FragrancePreference:    f.FragrancePreference,
		CustomBrandingRequired: f.CustomBrandingRequired,
		DeliveryLocation:       f.DeliveryLocation,
		AdditionalRequirements: f.AdditionalRequirements,
		Status:                 models.InquiryStatusNew,
	}
}

// ReplyForm is the staff reply composed on a contact or quote detail view
type ReplyForm struct {
	Subject string `json:"subject" form:"subject" validate:"required,max=300"`
	Message string `json:"message" form:"message" validate:"required"`
}

// StatusForm is the staff status update payload
type StatusForm struct {
	Status     string  `json:"status" form:"status" validate:"required"`
	AdminNotes *string `json:"admin_notes" form:"admin_notes"`
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
