package handlers

import (
	"errors"
	"net/http"
	"time"

	"foodonline-api/accounts"
	"foodonline-api/config"
	"foodonline-api/mailer"
	"foodonline-api/metrics"
	"foodonline-api/middleware"
	"foodonline-api/models"
	"foodonline-api/orders"
	"foodonline-api/session"
	"foodonline-api/tokens"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer talks to.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Accounts *accounts.Store
	Tokens   *tokens.Service
	Sessions *session.Store
	Ledger   *orders.Ledger
	Mailer   mailer.Mailer
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
	// Now is the reference clock for dashboards and opening hours.
	Now func() time.Time
}

type Handler struct {
	db       *gorm.DB
	cfg      *config.Config
	accounts *accounts.Store
	tokens   *tokens.Service
	sessions *session.Store
	ledger   *orders.Ledger
	mailer   mailer.Mailer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func New(d Deps) *Handler {
	registerValidators()
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		db:       d.DB,
		cfg:      d.Config,
		accounts: d.Accounts,
		tokens:   d.Tokens,
		sessions: d.Sessions,
		ledger:   d.Ledger,
		mailer:   d.Mailer,
		metrics:  d.Metrics,
		logger:   d.Logger,
		now:      now,
	}
}

// Safe landing views used as redirect hints on NotFound responses.
const (
	loginPath          = "/api/accounts/login"
	myAccountPath      = "/api/accounts/MyAccount"
	vendorDashPath     = "/api/vendor"
	customerDashPath   = "/api/customer"
	menuBuilderPath    = "/api/vendor/menu_builder"
	marketplacePath    = "/api/marketplace"
	openingHoursPath   = "/api/vendor/opening-hours"
	customerOrdersPath = "/api/customer/my_orders"
)

// dashboardPath is where MyAccount sends a user of the given role.
func dashboardPath(role models.UserRole) string {
	switch role {
	case models.RoleVendor:
		return vendorDashPath
	case models.RoleCustomer:
		return customerDashPath
	default:
		return ""
	}
}

func notFound(c *gin.Context, msg, redirect string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg, "redirect": redirect})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}

func (h *Handler) internalError(c *gin.Context, err error, msg string) {
	h.logger.Error().Err(err).
		Str("path", c.FullPath()).
		Uint("user_id", middleware.GetUserID(c)).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// currentVendor loads the vendor owned by the authenticated user. It writes
// the error response itself and returns nil when there is none.
func (h *Handler) currentVendor(c *gin.Context) *models.Vendor {
	var vendor models.Vendor
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", middleware.GetUserID(c)).
		First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, "No vendor found for your account", myAccountPath)
		return nil
	}
	if err != nil {
		h.internalError(c, err, "Failed to load vendor")
		return nil
	}
	return &vendor
}

// sendMail delivers in the request's context. Failures are logged and never
// fail the request that triggered them.
func (h *Handler) sendMail(c *gin.Context, to, subject, body string) {
	if err := h.mailer.Send(c.Request.Context(), to, subject, body); err != nil {
		h.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("email delivery failed")
	}
}
