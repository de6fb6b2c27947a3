package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kamilakurskaa/TrustFlow/internal/adapter"
	"github.com/kamilakurskaa/TrustFlow/internal/api/middleware"
	"github.com/kamilakurskaa/TrustFlow/internal/api/rest"
	"github.com/kamilakurskaa/TrustFlow/internal/api/rest/dto"
	"github.com/kamilakurskaa/TrustFlow/internal/auth"
	"github.com/kamilakurskaa/TrustFlow/internal/config"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/generator"
	"github.com/kamilakurskaa/TrustFlow/internal/ledger"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
	"github.com/kamilakurskaa/TrustFlow/internal/store"
	"github.com/kamilakurskaa/TrustFlow/internal/workflow"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeDatagen stands in for the data generation service
type fakeDatagen struct {
	gen *generator.Generator
}

func (d *fakeDatagen) GenerateFeatures(_ context.Context, _ uint64, hasHistory bool) (*generator.FeatureSet, error) {
	fs := d.gen.Generate(hasHistory)
	return &fs, nil
}

func (d *fakeDatagen) Healthy(context.Context) bool { return true }

type testAPI struct {
	router *gin.Engine
	store  store.Store
	engine *workflow.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))
	s := store.NewPGStore(db)

	clock := adapter.NewClock()
	mockLedger := ledger.NewMock(clock)
	engine := workflow.NewEngine(workflow.Config{
		PoolSize:       2,
		QueueSize:      16,
		ComputeTimeout: 5 * time.Second,
	}, s, mockLedger, &fakeDatagen{gen: generator.NewWithSeed(1)}, workflow.NewReferenceScorer(), clock)
	t.Cleanup(engine.Shutdown)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := rest.NewHandler(s, engine, mockLedger, issuer, config.UploadConfig{
		Dir:               t.TempDir(),
		MaxSize:           1 << 20,
		AllowedExtensions: []string{".pdf"},
	})

	router := gin.New()
	rest.SetupRoutes(router, handler, middleware.Auth(issuer, s))

	return &testAPI{router: router, store: s, engine: engine}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) register(t *testing.T, email, password string) dto.User {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user dto.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.Login
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t)

	user := api.register(t, "a@x.com", "password1")
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.IsActive)
	assert.Zero(t, user.ReputationScore)

	// Same email always fails, regardless of other fields.
	w := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":     "a@x.com",
		"password":  "different9",
		"full_name": "Someone Else",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing email", body: map[string]any{"password": "password1"}},
		{name: "malformed email", body: map[string]any{"email": "not-an-email", "password": "password1"}},
		{name: "short password", body: map[string]any{"email": "b@x.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_WalletBootstrapsLedgerProfile(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":          "wallet@x.com",
		"password":       "password1",
		"wallet_address": "0x00000000000000000000000000000000000000bb",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user dto.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.NotNil(t, user.LedgerProfileTx)
	assert.Regexp(t, "^0x[0-9a-f]{64}$", *user.LedgerProfileTx)
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")

	token := api.login(t, "a@x.com", "password1")
	assert.NotEmpty(t, token)

	// Unknown email and wrong password yield the same message.
	for _, body := range []map[string]any{
		{"email": "a@x.com", "password": "wrongpass1"},
		{"email": "nobody@x.com", "password": "password1"},
	} {
		w := api.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
	}
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user dto.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "a@x.com", user.Email)

	// No token and a garbage token are both rejected.
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/auth/me", "garbage", nil).Code)
}

func TestProfileRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile dto.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Nil(t, profile.Address)

	w = api.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{
		"address":        "1 Main Street",
		"monthly_income": 85000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.NotNil(t, profile.Address)
	assert.Equal(t, "1 Main Street", *profile.Address)
	require.NotNil(t, profile.MonthlyIncome)
	assert.EqualValues(t, 85000, *profile.MonthlyIncome)

	// Partial update leaves other fields in place.
	w = api.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{
		"employment_status": "employed",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.NotNil(t, profile.Address)
	assert.Equal(t, "1 Main Street", *profile.Address)
}

func TestChooseMethod(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.do(t, http.MethodPost, "/api/credit/choose-method", token, map[string]any{
		"has_credit_history":      true,
		"consent_data_processing": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user dto.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.NotNil(t, user.HasCreditHistory)
	assert.True(t, *user.HasCreditHistory)
	assert.True(t, user.ConsentDataProcessing)
}

func (a *testAPI) pollRequest(t *testing.T, token string, requestID uint64) dto.CreditRequest {
	t.Helper()

	var request dto.CreditRequest
	require.Eventually(t, func() bool {
		w := a.do(t, http.MethodGet, fmt.Sprintf("/api/credit/request/%d", requestID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))
		return request.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return request
}

func TestCreditScoringEndToEnd(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	// No report yet.
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/credit/score", token, nil).Code)

	w := api.do(t, http.MethodPost, "/api/credit/request", token, map[string]any{
		"use_blockchain": false,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var request dto.CreditRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))
	assert.Equal(t, domain.RequestStatusProcessing, request.Status)

	done := api.pollRequest(t, token, request.ID)
	require.Equal(t, domain.RequestStatusCompleted, done.Status)

	w = api.do(t, http.MethodGet, "/api/credit/score", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report dto.CreditReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.GreaterOrEqual(t, report.Score, domain.ScoreMin)
	assert.LessOrEqual(t, report.Score, domain.ScoreMax)
	assert.Equal(t, domain.CategorizeScore(report.Score), report.ScoreCategory)
	assert.InDelta(t, domain.ReputationFromScore(report.Score), report.ReputationScore, 1e-9)
	assert.Nil(t, report.TransactionHash)

	// The same report is reachable by id and in the history.
	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/credit/score/%d", report.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/credit/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Reports []dto.CreditReport `json:"reports"`
		Total   int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, 1, history.Total)
	require.Len(t, history.Reports, 1)
	assert.Equal(t, report.ID, history.Reports[0].ID)
}

func TestCreditScoringWithLedger(t *testing.T) {
	api := newTestAPI(t)

	// Ledger recording needs a configured wallet.
	w := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":          "a@x.com",
		"password":       "password1",
		"wallet_address": "0x00000000000000000000000000000000000000bb",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := api.login(t, "a@x.com", "password1")

	w = api.do(t, http.MethodPost, "/api/credit/request", token, map[string]any{
		"use_blockchain": true,
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var request dto.CreditRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))

	done := api.pollRequest(t, token, request.ID)
	require.Equal(t, domain.RequestStatusCompleted, done.Status)
	assert.True(t, done.LedgerRecorded)

	w = api.do(t, http.MethodGet, "/api/credit/score", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report dto.CreditReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.NotNil(t, report.TransactionHash)

	// Verification succeeds against the stored record.
	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/credit/verify-on-blockchain/%d", report.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var verification workflow.Verification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verification))
	assert.True(t, verification.Recorded)
	assert.True(t, verification.Verified)
	assert.False(t, verification.VerifiedAt.IsZero())

	// The write shows up in the append-only log.
	w = api.do(t, http.MethodGet, "/api/credit/blockchain-records", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records struct {
		Records []dto.BlockchainRecord `json:"records"`
		Total   int                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Equal(t, 1, records.Total)
}

func TestCreditScoring_LedgerRequiresWallet(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.do(t, http.MethodPost, "/api/credit/request", token, map[string]any{
		"use_blockchain": true,
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var request dto.CreditRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))

	// Without a wallet the report completes but nothing reaches the ledger.
	done := api.pollRequest(t, token, request.ID)
	require.Equal(t, domain.RequestStatusCompleted, done.Status)
	assert.False(t, done.LedgerRecorded)

	w = api.do(t, http.MethodGet, "/api/credit/score", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report dto.CreditReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Nil(t, report.TransactionHash)
}

func TestVerifyOnBlockchain_UnknownReport(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.do(t, http.MethodPost, "/api/credit/verify-on-blockchain/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessParsing_RequiresConsent(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.do(t, http.MethodPost, "/api/credit/process-parsing", token, map[string]any{
		"data_source": "gosuslugi",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// After consent the job is accepted.
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/credit/choose-method", token, map[string]any{
		"has_credit_history":      true,
		"consent_data_processing": true,
	}).Code)

	w = api.do(t, http.MethodPost, "/api/credit/process-parsing", token, map[string]any{
		"data_source": "gosuslugi",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var job dto.ParserJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, "gosuslugi", job.DataSource)
	assert.Equal(t, domain.RequestStatusProcessing, job.Status)
}

func TestBlockchainRating(t *testing.T) {
	api := newTestAPI(t)
	user := api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.do(t, http.MethodGet, "/api/credit/blockchain-rating", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rating dto.BlockchainRating
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rating))
	assert.Equal(t, 500+int64(user.ID*12345%300), rating.LedgerRating)
	assert.Nil(t, rating.LocalScore)
	require.NotNil(t, rating.Network)
	assert.Equal(t, ledger.ModeMock, rating.Network.Mode)
	assert.True(t, rating.Network.Healthy)
}

func TestMeWithRating(t *testing.T) {
	api := newTestAPI(t)
	user := api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{
		"address":        "1 Main Street",
		"monthly_income": 85000,
	}).Code)

	w := api.do(t, http.MethodGet, "/api/users/me/with-rating", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.UserWithRating
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, 500+int64(user.ID*12345%300), resp.LedgerRating)
	assert.InDelta(t, 0.5, resp.ProfileCompleteness, 1e-9)
}

func (a *testAPI) uploadPDF(t *testing.T, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/credit/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
}

func TestUploadDocument(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.uploadPDF(t, token, "statement.pdf", pdfBytes())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc dto.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "statement.pdf", doc.Filename)
	assert.Equal(t, domain.DocumentTypeGosuslugi, doc.DocumentType)
	assert.False(t, doc.IsParsed)

	// Wrong extension and non-PDF content are both rejected.
	assert.Equal(t, http.StatusBadRequest, api.uploadPDF(t, token, "statement.txt", pdfBytes()).Code)
	assert.Equal(t, http.StatusBadRequest, api.uploadPDF(t, token, "fake.pdf", []byte("just text")).Code)
}

func TestDocumentProcessingEndToEnd(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.uploadPDF(t, token, "statement.pdf", pdfBytes())
	require.Equal(t, http.StatusCreated, w.Code)
	var doc dto.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/credit/process-document/%d", doc.ID), token, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	// Wait for the document to carry parsed data.
	require.Eventually(t, func() bool {
		parsed, err := api.store.GetDocumentForUser(context.Background(), doc.UserID, doc.ID)
		require.NoError(t, err)
		return parsed != nil && parsed.IsParsed
	}, 5*time.Second, 10*time.Millisecond)

	// Score from the parsed document.
	w = api.do(t, http.MethodPost, "/api/credit/request", token, map[string]any{
		"use_blockchain":     false,
		"source_document_id": doc.ID,
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	var request dto.CreditRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))

	done := api.pollRequest(t, token, request.ID)
	require.Equal(t, domain.RequestStatusCompleted, done.Status)

	w = api.do(t, http.MethodGet, "/api/credit/score", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report dto.CreditReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.NotNil(t, report.SourceDocumentID)
	assert.Equal(t, doc.ID, *report.SourceDocumentID)
}

func TestDeleteDocument(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	token := api.login(t, "a@x.com", "password1")

	w := api.uploadPDF(t, token, "statement.pdf", pdfBytes())
	require.Equal(t, http.StatusCreated, w.Code)
	var doc dto.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	path := fmt.Sprintf("/api/credit/documents/%d", doc.ID)
	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, path, token, nil).Code)
}

func TestOwnershipIsolation(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "password1")
	api.register(t, "b@x.com", "password2")
	tokenA := api.login(t, "a@x.com", "password1")
	tokenB := api.login(t, "b@x.com", "password2")

	w := api.do(t, http.MethodPost, "/api/credit/request", tokenA, map[string]any{"use_blockchain": false})
	require.Equal(t, http.StatusAccepted, w.Code)
	var request dto.CreditRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))
	api.pollRequest(t, tokenA, request.ID)

	// B cannot see A's request or report.
	assert.Equal(t, http.StatusNotFound,
		api.do(t, http.MethodGet, fmt.Sprintf("/api/credit/request/%d", request.ID), tokenB, nil).Code)
	assert.Equal(t, http.StatusNotFound,
		api.do(t, http.MethodGet, "/api/credit/score", tokenB, nil).Code)
}
