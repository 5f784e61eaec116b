package handler

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
	"github.com/sangkips/trademate-console/internal/presentation/http/middleware"
	"github.com/sangkips/trademate-console/pkg/apperror"
)

// AuthHandler handles sign-in, sign-up, and sign-out pages
type AuthHandler struct {
	*Base
	authService *service.AuthService
	backendURL  string
}

// NewAuthHandler creates a new auth handler. backendURL is recorded in each new
// session so background pollers reach the same backend.
func NewAuthHandler(base *Base, authService *service.AuthService, backendURL string) *AuthHandler {
	return &AuthHandler{Base: base, authService: authService, backendURL: backendURL}
}

// Root sends signed-in users to their home page and everyone else to login.
func (h *AuthHandler) Root(c *gin.Context) {
	if sess, err := h.sessions.Load(c.Request); err == nil && !sess.Expired(time.Now(), 0) {
		c.Redirect(http.StatusSeeOther, sess.User.Role.Home())
		return
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// ShowLogin renders the sign-in form
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if sess, err := h.sessions.Load(c.Request); err == nil && !sess.Expired(time.Now(), 0) {
		c.Redirect(http.StatusSeeOther, sess.User.Role.Home())
		return
	}
	h.render(c, http.StatusOK, "login", Page{Title: "Sign in", Form: &request.LoginRequest{}})
}

// Login authenticates with the backend and starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		fields, _ := formErrors(err)
		h.render(c, http.StatusUnprocessableEntity, "login", Page{Title: "Sign in", Form: &req, Errors: fields})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logging.FromContext(c.Request.Context()).Info("login failed", "email", req.Email, "error", err)
		status := apperror.GetAppError(err).Code
		h.render(c, status, "login", Page{
			Title: "Sign in",
			Form:  &request.LoginRequest{Email: req.Email},
			Flash: &session.Flash{Kind: FlashError, Message: apperror.MessageOr(err, "Unable to sign in, please try again")},
		})
		return
	}

	sess := session.New(res.Token, res.User, h.backendURL)
	if err := h.sessions.Save(c.Writer, sess); err != nil {
		h.fail(c, err, middleware.LoginPath)
		return
	}
	logging.FromContext(c.Request.Context()).Info("user signed in", "user_id", res.User.ID, "role", res.User.Role)

	h.redirect(c, res.User.Role.Home(), FlashSuccess, "Welcome back, "+res.User.FirstName)
}

// Logout ends the session locally even when the backend call fails
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.GetSession(c); sess != nil {
		h.authService.Logout(c.Request.Context(), sess.ID)
	}
	h.sessions.Clear(c.Writer)
	h.redirect(c, middleware.LoginPath, FlashSuccess, "You have been signed out")
}

// ShowRegister renders the shop sign-up form
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.render(c, http.StatusOK, "register", Page{Title: "Register", Form: &request.RegisterShopRequest{}})
}

// Register creates a shop owner account and moves on to verification
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterShopRequest
	if err := c.ShouldBind(&req); err != nil {
		h.registerFailed(c, &req, err)
		return
	}

	input := &repository.RegisterShopInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ShopName:     req.ShopName,
		StoreAddress: req.StoreAddress,
		Email:        req.Email,
		Phone:        req.Phone,
		DOB:          req.DOB,
		Password:     req.Password,
	}
	files := []struct {
		field string
		fh    *multipart.FileHeader
	}{{"icon", req.Icon}, {"banner", req.Banner}, {"avatar", req.Avatar}}
	for _, f := range files {
		upload, err := readUpload(f.fh, f.field)
		if err != nil {
			h.registerFailed(c, &req, err)
			return
		}
		if upload != nil {
			input.Files = append(input.Files, *upload)
		}
	}

	if err := h.authService.RegisterShop(c.Request.Context(), input); err != nil {
		h.registerFailed(c, &req, err)
		return
	}

	h.redirect(c, "/verify", FlashSuccess, "Account created. Enter the code we sent to "+input.Email)
}

func (h *AuthHandler) registerFailed(c *gin.Context, req *request.RegisterShopRequest, err error) {
	req.Password, req.PasswordConfirm = "", ""
	page := Page{Title: "Register", Form: req}
	if fields, ok := formErrors(err); ok {
		page.Errors = fields
		h.render(c, http.StatusUnprocessableEntity, "register", page)
		return
	}
	page.Flash = &session.Flash{Kind: FlashError, Message: apperror.MessageOr(err, "Registration failed, please try again")}
	h.render(c, apperror.GetAppError(err).Code, "register", page)
}

// ShowVerify renders the verification-code form
func (h *AuthHandler) ShowVerify(c *gin.Context) {
	h.render(c, http.StatusOK, "verify", Page{Title: "Verify account", Form: &request.VerifyAccountRequest{}})
}

// Verify submits the emailed code
func (h *AuthHandler) Verify(c *gin.Context) {
	var req request.VerifyAccountRequest
	err := c.ShouldBind(&req)
	if err == nil {
		err = h.authService.VerifyAccount(c.Request.Context(), req.Code)
	}
	if err != nil {
		page := Page{Title: "Verify account", Form: &req}
		status := http.StatusUnprocessableEntity
		if fields, ok := formErrors(err); ok {
			page.Errors = fields
		} else {
			status = apperror.GetAppError(err).Code
			page.Flash = &session.Flash{Kind: FlashError, Message: apperror.MessageOr(err, "Verification failed, please try again")}
		}
		h.render(c, status, "verify", page)
		return
	}

	h.redirect(c, middleware.LoginPath, FlashSuccess, "Account verified. Please sign in")
}

// Unauthorized is shown when a signed-in user opens a page their role cannot use
func (h *AuthHandler) Unauthorized(c *gin.Context) {
	var user *entity.User
	if sess, err := h.sessions.Load(c.Request); err == nil {
		user = &sess.User
	}
	h.render(c, http.StatusForbidden, "message", Page{
		Title: "Unauthorized",
		User:  user,
		Data:  apperror.ErrForbidden.Message,
	})
}

// NotFound renders the 404 page
func (h *AuthHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "message", Page{Title: "Page not found", Data: "The page you are looking for does not exist."})
}
