package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/internal/presentation/http/middleware"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/sangkips/trademate-console/pkg/pagination"
)

const maxUploadSize = 5 << 20

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
)

// Page is the data every full page template receives.
type Page struct {
	Title   string
	Section string
	User    *entity.User
	Flash   *session.Flash
	Form    any
	Errors  map[string]string
	Data    any
}

// Pager feeds the pager partial: a paginated result and the list URL it pages through.
type Pager struct {
	Result any
	Base   string
}

// ConfirmView is the data for the delete/block confirmation page.
type ConfirmView struct {
	Message string
	Action  string
	Cancel  string
	Confirm string
}

// PrintView is a receipt laid out for the browser's print dialog.
type PrintView struct {
	Receipt   *service.ReceiptView
	Back      string
	AutoPrint bool
}

// autoPrintQuery asks the print view to open the print dialog on load.
const autoPrintQuery = "autoprint"

// Base carries what every page handler needs: the session cookie store and
// the auth service for tearing down expired sessions.
type Base struct {
	sessions *session.Store
	auth     *service.AuthService
}

// NewBase creates the shared handler base
func NewBase(sessions *session.Store, auth *service.AuthService) *Base {
	return &Base{sessions: sessions, auth: auth}
}

// render writes a full page with the signed-in user and any queued toast.
func (b *Base) render(c *gin.Context, status int, name string, p Page) {
	if sess := middleware.GetSession(c); sess != nil {
		user := sess.User
		p.User = &user
	}
	if p.Flash == nil {
		p.Flash = b.sessions.PopFlash(c.Writer, c.Request)
	}
	if p.Errors == nil {
		p.Errors = map[string]string{}
	}
	c.HTML(status, name, p)
}

// fragment writes one block of a page without the layout.
func (b *Base) fragment(c *gin.Context, name string, data any) {
	c.HTML(http.StatusOK, name, Page{Data: data, Errors: map[string]string{}})
}

// redirect sends the browser to path with an optional toast.
func (b *Base) redirect(c *gin.Context, path, kind, message string) {
	if message != "" {
		b.sessions.SetFlash(c.Writer, session.Flash{Kind: kind, Message: message})
	}
	c.Redirect(http.StatusSeeOther, path)
}

// fail reports err as a toast on back. A rejected token ends the session instead.
func (b *Base) fail(c *gin.Context, err error, back string) {
	if errors.Is(err, apperror.ErrTokenExpired) {
		b.expire(c)
		return
	}
	logging.FromContext(c.Request.Context()).Warn("request failed", "path", c.FullPath(), "error", err)
	b.redirect(c, back, FlashError, apperror.MessageOr(err, "Something went wrong, please try again"))
}

// errorPage renders a failure that leaves nothing to go back to.
func (b *Base) errorPage(c *gin.Context, err error) {
	if errors.Is(err, apperror.ErrTokenExpired) {
		b.expire(c)
		return
	}
	logging.FromContext(c.Request.Context()).Error("page failed", "path", c.FullPath(), "error", err)
	appErr := apperror.GetAppError(err)
	b.render(c, appErr.Code, "message", Page{
		Title: http.StatusText(appErr.Code),
		Data:  apperror.MessageOr(err, "Something went wrong, please try again"),
	})
}

// expire clears a session the backend no longer accepts.
func (b *Base) expire(c *gin.Context) {
	if sess := middleware.GetSession(c); sess != nil {
		b.auth.EndSession(c.Request.Context(), sess.ID)
	}
	b.sessions.Clear(c.Writer)
	b.redirect(c, middleware.LoginPath, FlashWarning, apperror.ErrTokenExpired.Message)
}

// credentials identifies the current session to services that poll.
func credentials(c *gin.Context) service.Credentials {
	sess := middleware.GetSession(c)
	if sess == nil {
		return service.Credentials{}
	}
	return service.Credentials{SessionID: sess.ID, BaseURL: sess.BaseURL, Token: sess.Token}
}

// currentUser returns the signed-in user.
func currentUser(c *gin.Context) entity.User {
	if sess := middleware.GetSession(c); sess != nil {
		return sess.User
	}
	return entity.User{}
}

// formErrors maps binding and validation failures onto form field names.
// ok is false for errors that are not about the submitted fields.
func formErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, seen := out[fe.Field()]; !seen {
				out[fe.Field()] = validationMessage(fe)
			}
		}
		return out, true
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && len(appErr.Errors) > 0 {
		out := make(map[string]string, len(appErr.Errors))
		for _, fe := range appErr.Errors {
			if _, seen := out[fe.Field]; !seen {
				out[fe.Field] = fe.Message
			}
		}
		return out, true
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return map[string]string{"form": "Please enter valid numbers"}, true
	}
	return nil, false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email!"
	case "eqfield":
		return "The two passwords do not match!"
	case "gte":
		return "Cannot be negative"
	case "datetime":
		return "Please select a valid date"
	case "len", "numeric":
		return "Enter the 6-digit code"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "oneof":
		return "Invalid choice"
	}
	return "Invalid value"
}

// RegisterFormTagNames makes validation errors report form field names
// (e.g. "firstName") instead of Go field names.
func RegisterFormTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// readUpload loads an optional form file for forwarding to the backend.
func readUpload(fh *multipart.FileHeader, field string) (*entity.Upload, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > maxUploadSize {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("%s must be smaller than 5 MB", fh.Filename))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	if err != nil {
		return nil, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &entity.Upload{Field: field, Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}

// PageURL sets the page query parameter on a list URL.
func PageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// listURL builds a list URL from non-empty query values.
func listURL(path string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// FuncMap returns the template helpers used by the page templates.
func FuncMap(f *money.Formatter) template.FuncMap {
	return template.FuncMap{
		"money": f.Format,
		"plain": f.Plain,
		"expired": func(p entity.Product) bool {
			return p.IsExpired(time.Now())
		},
		"add":     func(a, b int) int { return a + b },
		"sub":     func(a, b int) int { return a - b },
		"pageURL": PageURL,
	}
}
