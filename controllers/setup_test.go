package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/middleware"
	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/services"
	"github.com/nageshcare/nageshcare-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	if os.Getenv("GO_ENV") == "" {
		os.Setenv("GO_ENV", "test")
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testStaffEmail = "priya@nageshcare.com"

// testEnv wires every controller over an in-memory database and mocks
type testEnv struct {
	db        *gorm.DB
	mailer    *services.MockMailer
	store     *services.MockFileStore
	settings  *services.SettingsService
	inquiries *services.InquiryService
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testutil.RequireTestEnvironment(t)

	db := testutil.SetupTestDB(t)
	env := &testEnv{
		db:       db,
		mailer:   services.NewMockMailer(),
		store:    services.NewMockFileStore(),
		settings: services.NewSettingsService(db),
	}
	env.inquiries = services.NewInquiryService(db, env.settings, env.mailer, env.store)

	catalog := services.NewCatalogService(db, env.store)
	content := services.NewContentService(db, catalog)
	images := services.NewProductImageService(db, env.store)

	site := NewSiteController(env.settings, content)
	public := NewInquiryController(env.inquiries)
	products := NewCatalogController(catalog, images, content)
	staff := NewStaffInquiryController(env.inquiries)
	settings := NewSettingsController(env.settings, env.mailer)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/site", site.GetSite)
	v1.GET("/pages/:page", site.GetPage)
	v1.GET("/categories", products.ListCategories)
	v1.GET("/categories/:slug", products.GetCategory)
	v1.GET("/products", products.ListProducts)
	v1.GET("/products/:slug", products.GetProduct)
	v1.POST("/contact", public.SubmitContact)
	v1.POST("/quote-requests", public.SubmitQuoteRequest)
	v1.POST("/inquiries", public.SubmitProductInquiry)

	sg := v1.Group("/staff", testutil.MockStaffAuth("auth0|staff1", testStaffEmail, "staff"), middleware.StaffIdentity(nil))
	sg.GET("/dashboard", staff.Dashboard)
	sg.GET("/contact-messages", staff.ListContactMessages)
	sg.GET("/contact-messages/export", staff.ExportContactMessages)
	sg.POST("/contact-messages/bulk", staff.BulkContactMessages)
	sg.GET("/contact-messages/:id", staff.GetContactMessage)
	sg.POST("/contact-messages/:id", staff.PostContactMessage)
	sg.DELETE("/contact-messages/:id", staff.DeleteContactMessage)
	sg.GET("/quote-requests", staff.ListQuoteRequests)
	sg.GET("/quote-requests/export", staff.ExportQuoteRequests)
	sg.POST("/quote-requests/bulk", staff.BulkQuoteRequests)
	sg.GET("/quote-requests/:id", staff.GetQuoteRequest)
	sg.POST("/quote-requests/:id", staff.PostQuoteRequest)
	sg.DELETE("/quote-requests/:id", staff.DeleteQuoteRequest)
	sg.GET("/quote-requests/:id/logo", staff.GetQuoteLogo)
	sg.GET("/inquiries", staff.ListInquiries)
	sg.POST("/inquiries/bulk", staff.BulkInquiries)
	sg.GET("/inquiries/:id", staff.GetInquiry)
	sg.POST("/inquiries/:id", staff.PostInquiry)
	sg.GET("/replies/:id/attachment", staff.DownloadReplyAttachment)
	sg.GET("/settings", settings.GetSettings)
	sg.PUT("/settings", settings.UpdateSettings)
	sg.POST("/settings/test-email", settings.TestEmail)
	sg.POST("/products/:id/images", products.UploadProductImage)
	sg.POST("/product-images/:id/primary", products.SetPrimaryImage)
	sg.DELETE("/product-images/:id", products.DeleteProductImage)

	env.router = router
	return env
}

// serve runs req through the router and decodes a JSON body when there is one
func (env *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target string, values map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (env *testEnv) configureMail(t *testing.T) {
	t.Helper()
	host := "smtp.test.local"
	user := "sales@nageshcare.com"
	password := "secret"
	_, err := env.settings.Update(context.Background(), services.SettingsPatch{
		EmailHost:         &host,
		EmailHostUser:     &user,
		EmailHostPassword: &password,
	})
	require.NoError(t, err)
}

func (env *testEnv) newContact(t *testing.T) *models.ContactMessage {
	t.Helper()
	msg := models.ContactMessage{
		Name:    "Asha",
		Email:   "a@x.com",
		Phone:   "123",
		Subject: "general",
		Message: "Hi",
		Status:  models.ContactStatusNew,
	}
	require.NoError(t, env.db.Create(&msg).Error)
	return &msg
}

func (env *testEnv) newQuote(t *testing.T, status models.QuoteStatus) *models.QuoteRequest {
	t.Helper()
	quote := models.QuoteRequest{
		Name:             "Meera",
		BusinessName:     "Meera Stores",
		BusinessType:     "retail_store",
		Email:            "meera@example.com",
		Phone:            "9876543210",
		ProductInterests: "dhoop",
		DeliveryCity:     "Pune",
		DeliveryState:    "Maharashtra",
		DeliveryPin:      "411001",
		AgreedToContact:  true,
		Status:           status,
	}
	require.NoError(t, env.db.Create(&quote).Error)
	return &quote
}

func (env *testEnv) newProduct(t *testing.T, name string) *models.Product {
	t.Helper()
	var category models.Category
	require.NoError(t, env.db.Where(models.Category{Name: "Dhoop Sticks"}).
		Attrs(models.Category{IsActive: true}).FirstOrCreate(&category).Error)
	product := models.Product{
		Name:             name,
		CategoryID:       category.ID,
		ShortDescription: "short",
		FullDescription:  "full",
		IsActive:         true,
	}
	require.NoError(t, env.db.Create(&product).Error)
	return &product
}

func errorCode(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func errorFields(body map[string]interface{}) map[string]interface{} {
	e, _ := body["error"].(map[string]interface{})
	fields, _ := e["fields"].(map[string]interface{})
	return fields
}
