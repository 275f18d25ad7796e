package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"foodonline-api/accounts"
	"foodonline-api/mailer"
	"foodonline-api/middleware"
	"foodonline-api/models"
	"foodonline-api/session"
	"foodonline-api/tokens"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	FirstName       string `json:"first_name" form:"first_name" binding:"required,max=50"`
	LastName        string `json:"last_name" form:"last_name" binding:"required,max=50"`
	Username        string `json:"username" form:"username" binding:"required,max=50"`
	Email           string `json:"email" form:"email" binding:"required,email,max=100"`
	PhoneNumber     string `json:"phone_number" form:"phone_number" binding:"max=12"`
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
}

type RegisterVendorRequest struct {
	RegisterRequest
	VendorName string `json:"vendor_name" form:"vendor_name" binding:"required,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	ResetSession    string `json:"reset_session" form:"reset_session" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.Role.String(),
		"is_active":  u.IsActive,
	}
}

// RegisterUser creates an inactive customer account and mails the activation link
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	h.register(c, nil, accounts.RegisterInput{
		Role:            models.RoleCustomer,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, "Your account has been created successfully.")
}

// RegisterVendor creates an inactive vendor account together with its vendor record
func (h *Handler) RegisterVendor(c *gin.Context) {
	var req RegisterVendorRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	pending, ok := h.prepareImages(c, map[string]string{"vendor_license": "vendor/license"})
	if !ok {
		return
	}
	h.register(c, pending, accounts.RegisterInput{
		Role:            models.RoleVendor,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		VendorName:      req.VendorName,
		VendorLicense:   pending.paths()["vendor_license"],
	}, "Your account has been registered successfully! Please wait for the approval.")
}

// register creates the account and then stores any uploads the account
// record points at. The files are removed again when registration fails.
func (h *Handler) register(c *gin.Context, pending pendingImages, in accounts.RegisterInput, message string) {
	if err := h.saveImages(c, pending); err != nil {
		h.internalError(c, err, "Failed to store upload")
		return
	}
	user, vendor, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		h.discardImages(pending)
	}
	switch {
	case errors.Is(err, accounts.ErrDuplicateEmail):
		fieldError(c, "email", "User with this Email already exists.")
		return
	case errors.Is(err, accounts.ErrDuplicateUsername):
		fieldError(c, "username", "User with this Username already exists.")
		return
	case errors.Is(err, accounts.ErrPasswordMismatch):
		fieldError(c, "confirm_password", "Password does not match.")
		return
	case errors.Is(err, accounts.ErrVendorNameRequired):
		fieldError(c, "vendor_name", "This field is required.")
		return
	case err != nil:
		h.internalError(c, err, "Failed to create user")
		return
	}

	h.metrics.Registrations.WithLabelValues(user.Role.String()).Inc()
	h.sendAccountLink(c, user, tokens.PurposeActivate)

	resp := gin.H{"message": message, "user": userJSON(user)}
	if vendor != nil {
		resp["vendor"] = vendor
	}
	c.JSON(http.StatusCreated, resp)
}

// sendAccountLink mails an activation or reset link for user.
func (h *Handler) sendAccountLink(c *gin.Context, user *models.User, purpose tokens.Purpose) {
	uid, token, err := h.tokens.Issue(user, purpose)
	if err != nil {
		h.logger.Error().Err(err).Uint("user_id", user.ID).Str("purpose", string(purpose)).Msg("issue token")
		return
	}
	if purpose == tokens.PurposeActivate {
		link := fmt.Sprintf("%s/api/accounts/activate/%s/%s", h.cfg.SiteURL, uid, token)
		h.sendMail(c, user.Email, mailer.SubjectActivation, mailer.ActivationBody(user.FirstName, link))
		return
	}
	link := fmt.Sprintf("%s/api/accounts/reset_password_validate/%s/%s", h.cfg.SiteURL, uid, token)
	h.sendMail(c, user.Email, mailer.SubjectReset, mailer.ResetBody(user.FirstName, link))
}

func (h *Handler) verifyLink(c *gin.Context, purpose tokens.Purpose) (*models.User, bool) {
	user, err := h.tokens.Verify(c.Request.Context(), h.accounts, c.Param("uid"), c.Param("token"), purpose)
	if err != nil {
		h.metrics.TokenVerifications.WithLabelValues(string(purpose), "rejected").Inc()
		if !errors.Is(err, tokens.ErrRejected) {
			h.internalError(c, err, "Failed to verify link")
			return nil, false
		}
		return nil, false
	}
	h.metrics.TokenVerifications.WithLabelValues(string(purpose), "accepted").Inc()
	return user, true
}

// Activate consumes an activation link
func (h *Handler) Activate(c *gin.Context) {
	user, ok := h.verifyLink(c, tokens.PurposeActivate)
	if !ok {
		if !c.Writer.Written() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activation link.", "redirect": myAccountPath})
		}
		return
	}
	if err := h.accounts.Activate(c.Request.Context(), user); err != nil {
		h.internalError(c, err, "Failed to activate account")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Congratulations! Your account is activated.",
		"redirect": myAccountPath,
	})
}

// Login authenticates by email and opens a server-side session
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.accounts.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		h.metrics.Logins.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login credentials", "redirect": loginPath})
		return
	case errors.Is(err, accounts.ErrInactive):
		h.metrics.Logins.WithLabelValues("inactive").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "Please activate your account first."})
		return
	case err != nil:
		h.internalError(c, err, "Failed to log in")
		return
	}

	sessionID, err := h.sessions.Create(ctx, user.ID, h.cfg.SessionTTL)
	if err != nil {
		h.internalError(c, err, "Failed to create session")
		return
	}
	token, err := middleware.GenerateToken(h.cfg.JWTSecret, user, sessionID, h.cfg.SessionTTL, h.now())
	if err != nil {
		h.internalError(c, err, "Failed to generate token")
		return
	}
	h.metrics.Logins.WithLabelValues("success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":  "You are now logged in.",
		"token":    token,
		"user":     userJSON(user),
		"redirect": myAccountPath,
	})
}

// Logout revokes the current session
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Revoke(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.internalError(c, err, "Failed to log out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You are logged out.", "redirect": loginPath})
}

// MyAccount tells the client which dashboard the caller belongs to
func (h *Handler) MyAccount(c *gin.Context) {
	role := middleware.GetRole(c)
	target := dashboardPath(role)
	if target == "" {
		forbidden(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role.String(), "redirect": target})
}

// GetProfile returns the authenticated user's account, profile and vendor record
func (h *Handler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.accounts.FindByID(ctx, middleware.GetUserID(c))
	if errors.Is(err, accounts.ErrNotFound) {
		notFound(c, "User not found", loginPath)
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load user")
		return
	}

	var profile models.UserProfile
	if err := h.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		h.internalError(c, err, "Failed to load profile")
		return
	}
	resp := gin.H{"user": userJSON(user), "profile": profile}
	if user.Role == models.RoleVendor {
		var vendor models.Vendor
		if err := h.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&vendor).Error; err == nil {
			resp["vendor"] = vendor
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ForgotPassword mails a reset link. The response does not reveal whether
// the address is registered.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.accounts.FindByEmail(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		h.sendAccountLink(c, user, tokens.PurposeReset)
	case !errors.Is(err, accounts.ErrNotFound):
		h.internalError(c, err, "Failed to look up account")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "If an account exists for this email, a password reset link has been sent.",
		"redirect": loginPath,
	})
}

// ResetPasswordValidate consumes a reset link and opens a one-shot reset window
func (h *Handler) ResetPasswordValidate(c *gin.Context) {
	user, ok := h.verifyLink(c, tokens.PurposeReset)
	if !ok {
		if !c.Writer.Written() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This link has been expired.", "redirect": myAccountPath})
		}
		return
	}
	fp := h.tokens.Fingerprint(user, tokens.PurposeReset)
	windowID, err := h.sessions.OpenResetWindow(c.Request.Context(), user.ID, fp, h.cfg.ResetWindowTTL)
	if err != nil {
		h.internalError(c, err, "Failed to open reset window")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Please reset your password.",
		"reset_session": windowID,
		"redirect":      "/api/accounts/reset_password",
	})
}

// ResetPassword sets a new password through an open reset window. The window
// is only consumed once the two passwords match.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Password != req.ConfirmPassword {
		fieldError(c, "confirm_password", "Password do not match!")
		return
	}

	ctx := c.Request.Context()
	userID, fp, err := h.sessions.ConsumeResetWindow(ctx, req.ResetSession)
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This link has been expired.", "redirect": myAccountPath})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to read reset window")
		return
	}

	user, err := h.accounts.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, accounts.ErrNotFound) {
		h.internalError(c, err, "Failed to load user")
		return
	}
	if user == nil || !h.tokens.Matches(user, tokens.PurposeReset, fp) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This link has been expired.", "redirect": myAccountPath})
		return
	}
	if err := h.accounts.SetPassword(ctx, user, req.Password); err != nil {
		h.internalError(c, err, "Failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful.", "redirect": loginPath})
}
