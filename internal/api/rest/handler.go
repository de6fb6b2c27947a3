package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kamilakurskaa/TrustFlow/internal/api/middleware"
	"github.com/kamilakurskaa/TrustFlow/internal/api/rest/dto"
	"github.com/kamilakurskaa/TrustFlow/internal/auth"
	"github.com/kamilakurskaa/TrustFlow/internal/config"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/ledger"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
	"github.com/kamilakurskaa/TrustFlow/internal/store"
	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
	"github.com/kamilakurskaa/TrustFlow/internal/workflow"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// Register creates a new account with its empty profile
	// POST /api/auth/register
	Register(c *gin.Context)

	// Login authenticates an account and issues a bearer token
	// POST /api/auth/login
	Login(c *gin.Context)

	// Me returns the authenticated user
	// GET /api/auth/me
	Me(c *gin.Context)

	// GetProfile returns the authenticated user's profile
	// GET /api/users/profile
	GetProfile(c *gin.Context)

	// UpdateProfile overwrites the supplied profile fields
	// PUT /api/users/profile
	UpdateProfile(c *gin.Context)

	// MeWithRating returns the user, the ledger rating and profile completeness
	// GET /api/users/me/with-rating
	MeWithRating(c *gin.Context)

	// ChooseMethod persists the scoring-method selection and consent flag
	// POST /api/credit/choose-method
	ChooseMethod(c *gin.Context)

	// SubmitCreditRequest schedules an asynchronous scoring attempt
	// POST /api/credit/request
	SubmitCreditRequest(c *gin.Context)

	// GetCreditRequest returns one scoring attempt for status polling
	// GET /api/credit/request/:id
	GetCreditRequest(c *gin.Context)

	// GetLatestScore returns the most recent credit report
	// GET /api/credit/score
	GetLatestScore(c *gin.Context)

	// GetScore returns one credit report by id
	// GET /api/credit/score/:id
	GetScore(c *gin.Context)

	// GetHistory returns all credit reports, newest first
	// GET /api/credit/history
	GetHistory(c *gin.Context)

	// VerifyOnBlockchain checks a report against its ledger record
	// POST /api/credit/verify-on-blockchain/:report_id
	VerifyOnBlockchain(c *gin.Context)

	// UploadDocument stores a PDF under the upload directory
	// POST /api/credit/upload
	UploadDocument(c *gin.Context)

	// DeleteDocument soft-deletes an uploaded document
	// DELETE /api/credit/documents/:id
	DeleteDocument(c *gin.Context)

	// ProcessDocument schedules parsing of an uploaded document
	// POST /api/credit/process-document/:id
	ProcessDocument(c *gin.Context)

	// ProcessParsing schedules data collection from an external source
	// POST /api/credit/process-parsing
	ProcessParsing(c *gin.Context)

	// ListBlockchainRecords returns the append-only ledger log of the user
	// GET /api/credit/blockchain-records
	ListBlockchainRecords(c *gin.Context)

	// BlockchainRating returns the ledger rating alongside the local score
	// GET /api/credit/blockchain-rating
	BlockchainRating(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store  store.Store
	engine *workflow.Engine
	ledger ledger.Ledger
	issuer *auth.TokenIssuer
	upload config.UploadConfig
}

// NewHandler creates a new REST API handler
func NewHandler(s store.Store, engine *workflow.Engine, l ledger.Ledger, issuer *auth.TokenIssuer, upload config.UploadConfig) Handler {
	return &handler{
		store:  s,
		engine: engine,
		ledger: l,
		issuer: issuer,
		upload: upload,
	}
}

// Register creates a new account with its empty profile
func (h *handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternalError(c, err, "Failed to register user")
		return
	}

	user := &schema.User{
		Email:         strings.ToLower(req.Email),
		PasswordHash:  hash,
		FullName:      req.FullName,
		Phone:         req.Phone,
		WalletAddress: req.WalletAddress,
		IsActive:      true,
	}
	if err := h.store.CreateUserWithProfile(c.Request.Context(), user); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			respondBadRequest(c, "Email is already registered")
		case errors.Is(err, domain.ErrPhoneTaken):
			respondBadRequest(c, "Phone number is already registered")
		default:
			respondInternalError(c, err, "Failed to register user")
		}
		return
	}

	// A wallet on registration triggers a best-effort ledger profile bootstrap.
	if user.WalletAddress != nil {
		txRef, err := h.ledger.RegisterProfile(c.Request.Context(), user.ID, user.Email)
		if err != nil {
			logger.Warn("ledger profile bootstrap failed",
				zap.Uint64("userID", user.ID), zap.Error(err))
		} else if err := h.store.SetUserLedgerProfileTx(c.Request.Context(), user.ID, txRef); err != nil {
			logger.Error(err, zap.Uint64("userID", user.ID))
		} else {
			user.LedgerProfileTx = &txRef
		}
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login authenticates an account and issues a bearer token
func (h *handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		respondInternalError(c, err, "Failed to log in")
		return
	}
	// One uniform message for unknown email and wrong password.
	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respondUnauthorized(c, "Invalid email or password")
		return
	}
	if !user.IsActive {
		respondUnauthorized(c, "Account is deactivated")
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, dto.Login{
		AccessToken: token,
		TokenType:   "bearer",
		User:        dto.FromUser(user),
	})
}

// Me returns the authenticated user
func (h *handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromUser(middleware.CurrentUser(c)))
}

// GetProfile returns the authenticated user's profile
func (h *handler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	profile, err := h.store.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to get profile")
		return
	}
	if profile == nil {
		respondNotFound(c, "Profile not found")
		return
	}

	c.JSON(http.StatusOK, dto.FromProfile(profile))
}

// UpdateProfile overwrites the supplied profile fields
func (h *handler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	profile, err := h.store.UpsertProfile(c.Request.Context(), user.ID, store.ProfileUpdate{
		DateOfBirth:      req.DateOfBirth,
		Address:          req.Address,
		EmploymentStatus: req.EmploymentStatus,
		MonthlyIncome:    req.MonthlyIncome,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, dto.FromProfile(profile))
}

// MeWithRating returns the user, the ledger rating and profile completeness
func (h *handler) MeWithRating(c *gin.Context) {
	user := middleware.CurrentUser(c)

	rating, err := h.ledger.QueryRating(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to query ledger rating")
		return
	}

	completeness := 0.0
	profile, err := h.store.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to get profile")
		return
	}
	if profile != nil {
		completeness = dto.FromProfile(profile).Completeness()
	}

	c.JSON(http.StatusOK, dto.UserWithRating{
		User:                dto.FromUser(user),
		LedgerRating:        rating,
		ProfileCompleteness: completeness,
	})
}

// ChooseMethod persists the scoring-method selection and consent flag
func (h *handler) ChooseMethod(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req dto.ChooseMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	choice := store.MethodChoice{
		HasCreditHistory:      req.HasCreditHistory,
		ConsentDataProcessing: req.ConsentDataProcessing,
	}
	if err := h.store.SetUserMethodChoice(c.Request.Context(), user.ID, choice); err != nil {
		respondInternalError(c, err, "Failed to store method choice")
		return
	}

	updated, err := h.store.GetUserByID(c.Request.Context(), user.ID)
	if err != nil || updated == nil {
		respondInternalError(c, err, "Failed to store method choice")
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(updated))
}

// SubmitCreditRequest schedules an asynchronous scoring attempt
func (h *handler) SubmitCreditRequest(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req dto.SubmitCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	request, err := h.engine.Submit(c.Request.Context(), workflow.SubmitParams{
		UserID:           user.ID,
		UseLedger:        req.UseBlockchain,
		SourceDocumentID: req.SourceDocumentID,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to submit credit request")
		return
	}

	c.JSON(http.StatusAccepted, dto.FromCreditRequest(request))
}

// GetCreditRequest returns one scoring attempt for status polling
func (h *handler) GetCreditRequest(c *gin.Context) {
	user := middleware.CurrentUser(c)

	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.store.GetCreditRequestForUser(c.Request.Context(), user.ID, requestID)
	if err != nil {
		respondInternalError(c, err, "Failed to get credit request")
		return
	}
	if request == nil {
		respondNotFound(c, "Credit request not found")
		return
	}

	c.JSON(http.StatusOK, dto.FromCreditRequest(request))
}

// GetLatestScore returns the most recent credit report
func (h *handler) GetLatestScore(c *gin.Context) {
	user := middleware.CurrentUser(c)

	report, err := h.store.GetLatestReport(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to get credit report")
		return
	}
	if report == nil {
		respondNotFound(c, "No credit report found")
		return
	}

	c.JSON(http.StatusOK, dto.FromCreditReport(report))
}

// GetScore returns one credit report by id
func (h *handler) GetScore(c *gin.Context) {
	user := middleware.CurrentUser(c)

	reportID, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.store.GetReportForUser(c.Request.Context(), user.ID, reportID)
	if err != nil {
		respondInternalError(c, err, "Failed to get credit report")
		return
	}
	if report == nil {
		respondNotFound(c, "Credit report not found")
		return
	}

	c.JSON(http.StatusOK, dto.FromCreditReport(report))
}

// GetHistory returns all credit reports, newest first
func (h *handler) GetHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)

	reports, err := h.store.ListReports(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to list credit reports")
		return
	}

	items := make([]dto.CreditReport, 0, len(reports))
	for _, report := range reports {
		items = append(items, dto.FromCreditReport(report))
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": items,
		"total":   len(items),
	})
}

// VerifyOnBlockchain checks a report against its ledger record
func (h *handler) VerifyOnBlockchain(c *gin.Context) {
	user := middleware.CurrentUser(c)

	reportID, ok := pathID(c, "report_id")
	if !ok {
		return
	}

	verification, err := h.engine.VerifyOnLedger(c.Request.Context(), user.ID, reportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondNotFound(c, "Credit report not found")
			return
		}
		respondInternalError(c, err, "Failed to verify report")
		return
	}

	c.JSON(http.StatusOK, verification)
}

// ProcessDocument schedules parsing of an uploaded document
func (h *handler) ProcessDocument(c *gin.Context) {
	user := middleware.CurrentUser(c)

	documentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	job, err := h.engine.SubmitDocumentProcessing(c.Request.Context(), user.ID, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondNotFound(c, "Document not found")
			return
		}
		respondInternalError(c, err, "Failed to process document")
		return
	}

	c.JSON(http.StatusAccepted, dto.FromParserJob(job))
}

// ProcessParsing schedules data collection from an external source
func (h *handler) ProcessParsing(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req dto.ProcessParsingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	job, err := h.engine.SubmitParsing(c.Request.Context(), user.ID, req.DataSource)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoConsent):
			respondForbidden(c, "Data processing consent is required")
		case errors.Is(err, domain.ErrNotFound):
			respondNotFound(c, "User not found")
		default:
			respondInternalError(c, err, "Failed to submit parsing")
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.FromParserJob(job))
}

// ListBlockchainRecords returns the append-only ledger log of the user
func (h *handler) ListBlockchainRecords(c *gin.Context) {
	user := middleware.CurrentUser(c)

	records, err := h.store.ListBlockchainRecords(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to list ledger records")
		return
	}

	items := make([]dto.BlockchainRecord, 0, len(records))
	for _, record := range records {
		items = append(items, dto.FromBlockchainRecord(record))
	}

	c.JSON(http.StatusOK, gin.H{
		"records": items,
		"total":   len(items),
	})
}

// BlockchainRating returns the ledger rating alongside the local score
func (h *handler) BlockchainRating(c *gin.Context) {
	user := middleware.CurrentUser(c)

	rating, err := h.ledger.QueryRating(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to query ledger rating")
		return
	}

	network, err := h.ledger.NetworkStatus(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to query ledger network")
		return
	}

	var localScore *int
	report, err := h.store.GetLatestReport(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to get credit report")
		return
	}
	if report != nil {
		localScore = &report.Score
	}

	c.JSON(http.StatusOK, dto.BlockchainRating{
		LedgerRating:    rating,
		LocalScore:      localScore,
		ReputationScore: user.ReputationScore,
		Network:         network,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "trustflow-api",
	})
}

// pathID parses a numeric path parameter, responding with 400 on failure
func pathID(c *gin.Context, name string) (uint64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}
