package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyField is the hidden form field the checkout modal submits
	IdempotencyKeyField = "idempotency_key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// InFlight is where a duplicate is sent while the first submission is still
	// running. Empty answers 409 instead.
	InFlight string
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first response to a form submitted twice with the
// same key, so a double-clicked print button cannot commit a sale twice. The key
// is claimed before the handler runs; a duplicate arriving meanwhile is turned away.
// Requests without a key, or outside a session, pass through.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			key = c.PostForm(IdempotencyKeyField)
		}
		sess := GetSession(c)
		if key == "" || sess == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logging.FromContext(ctx)
		ikey := &entity.IdempotencyKey{
			Key:       key,
			SessionID: sess.ID,
			Endpoint:  c.Request.Method + " " + c.FullPath(),
			ExpiresAt: time.Now().Add(IdempotencyKeyTTL),
		}
		claimed, err := config.Repo.Claim(ctx, ikey)
		if err != nil {
			log.Warn("idempotency claim failed", "error", err)
			c.Next()
			return
		}
		if !claimed {
			existing, err := config.Repo.GetByKey(ctx, key, sess.ID)
			if err != nil {
				log.Warn("idempotency lookup failed", "error", err)
			}
			replay(c, config, existing)
			return
		}

		defer func() {
			if r := recover(); r != nil {
				if err := config.Repo.Release(ctx, key, sess.ID); err != nil {
					log.Warn("failed to release idempotency key", "error", err)
				}
				panic(r)
			}
		}()

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		ikey.ResponseCode = c.Writer.Status()
		ikey.Location = c.Writer.Header().Get("Location")
		ikey.ResponseBody = blw.body.String()
		if err := config.Repo.Save(ctx, ikey); err != nil {
			log.Warn("failed to store idempotency key", "error", err)
		}
	}
}

// replay answers a duplicate submission from the stored record. A record that is
// missing or still pending means the first request has not finished.
func replay(c *gin.Context, config IdempotencyConfig, existing *entity.IdempotencyKey) {
	c.Header("X-Idempotency-Replayed", "true")
	switch {
	case existing == nil || existing.Pending():
		if config.InFlight != "" {
			c.Redirect(http.StatusSeeOther, config.InFlight)
		} else {
			response.Abort(c, http.StatusConflict, "This request is already being processed")
		}
	case existing.Location != "":
		c.Redirect(existing.ResponseCode, existing.Location)
	default:
		c.Data(existing.ResponseCode, "text/html; charset=utf-8", []byte(existing.ResponseBody))
	}
	c.Abort()
}
