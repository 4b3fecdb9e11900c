package contact

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"seotooler/internal/constants"
	"seotooler/internal/logger"
	"seotooler/internal/submission"
	apperrors "seotooler/pkg/errors"
	"seotooler/pkg/metrics"
	"seotooler/pkg/ratelimit"
)

// Response is the body of a successful submission.
type Response struct {
	Message string `json:"message"`
}

const sentMessage = "Message sent successfully!"

type Handler struct {
	service         *Service
	limiter         *ratelimit.Limiter
	identityHeaders []string
	maxBodyBytes    int64
	logger          logger.Logger
}

type HandlerConfig struct {
	IdentityHeaders []string
	MaxBodyBytes    int64
}

func NewHandler(service *Service, limiter *ratelimit.Limiter, cfg HandlerConfig, log logger.Logger) *Handler {
	if len(cfg.IdentityHeaders) == 0 {
		cfg.IdentityHeaders = constants.DefaultIdentityHeaders
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	return &Handler{
		service:         service,
		limiter:         limiter,
		identityHeaders: cfg.IdentityHeaders,
		maxBodyBytes:    cfg.MaxBodyBytes,
		logger:          log,
	}
}

// RegisterRoutes mounts the contact endpoint for every method so that
// preflight and 405 answers carry the same CORS headers.
func (h *Handler) RegisterRoutes(router gin.IRouter, path string) {
	router.Any(path,
		CORSMiddleware(),
		ratelimit.Middleware(h.limiter, h.identityHeaders),
		h.Submit,
	)
}

// CORSMiddleware sets the headers every contact response carries.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Content-Type", "application/json")
		c.Next()
	}
}

// Submit godoc
// @Summary      Send a contact form submission
// @Description  Validates the submission and relays it to the site owner's chat. Limited per client to a fixed number of submissions per window.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        submission  body      submission.Fields  true  "Contact form fields"
// @Success      200         {object}  Response
// @Failure      400         {object}  errors.ErrorResponse
// @Failure      405         {object}  errors.ErrorResponse
// @Failure      429         {object}  errors.ErrorResponse
// @Failure      500         {object}  errors.ErrorResponse
// @Router       /contact [post]
func (h *Handler) Submit(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.AbortWithStatus(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		metrics.IncSubmission("method_not_allowed")
		h.respondError(c, apperrors.ErrMethodNotAllowed)
		return
	}

	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	fields, err := decodeFields(c.Request.Body)
	if err != nil {
		metrics.IncSubmission("malformed")
		h.respondError(c, apperrors.ErrMalformedBody.WithCause(err))
		return
	}

	identity := c.GetString(ratelimit.IdentityContextKey)
	if identity == "" {
		identity = ratelimit.ResolveIdentity(c.Request, h.identityHeaders)
	}

	if err := h.service.Deliver(ctx, fields, identity, c.Request.UserAgent()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Message: sentMessage})
}

var errTrailingData = errors.New("unexpected data after JSON object")

// decodeFields reads exactly one JSON value from body. Anything but
// whitespace after it makes the body malformed.
func decodeFields(body io.Reader) (submission.Fields, error) {
	var fields submission.Fields
	dec := json.NewDecoder(body)
	if err := dec.Decode(&fields); err != nil {
		return submission.Fields{}, err
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return submission.Fields{}, errTrailingData
	}
	return fields, nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status := apperrors.ToHTTPStatus(err)
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.ErrorwCtx(ctx, "Request error", "error", err, "path", c.Request.URL.Path)
	case apperrors.IsValidation(err):
		h.logger.DebugwCtx(ctx, "Submission rejected", "error", err, "status", status)
	default:
		h.logger.WarnwCtx(ctx, "Request rejected", "error", err, "status", status, "method", c.Request.Method)
	}
	c.JSON(status, apperrors.ToErrorResponse(err))
}
