package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string         `json:"code"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

type validationFailed struct {
	errs []ValidationError
}

func (v *validationFailed) Error() string {
	return fmt.Sprintf("request validation failed: %d errors", len(v.errs))
}

// bindJSON decodes the body, applies `default` tags and validates.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindWith(req, binding.JSON); err != nil {
		return validationErrors(err)
	}
	return finishBinding(c, req)
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, req any) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return validationErrors(err)
	}
	return finishBinding(c, req)
}

func finishBinding(c *gin.Context, req any) error {
	if err := defaults.Set(req); err != nil {
		return validationErrors(err)
	}
	if err := validate.StructCtx(c.Request.Context(), req); err != nil {
		return validationErrors(err)
	}
	return nil
}

func validationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		errs := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: errorMessage(fe),
				Params:  errorParams(fe),
			})
		}
		return &validationFailed{errs: errs}
	}

	if field, ok := domain.InvalidField(err); ok {
		return &validationFailed{errs: []ValidationError{{Code: "ERR_INVALID", Field: field, Message: err.Error()}}}
	}

	return &validationFailed{errs: []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}}
}

func errorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func errorParams(fe validator.FieldError) map[string]any {
	switch fe.Tag() {
	case "min", "gte":
		return map[string]any{"min": fe.Param()}
	case "max", "lte":
		return map[string]any{"max": fe.Param()}
	case "gt", "lt":
		return map[string]any{"value": fe.Param()}
	case "oneof":
		return map[string]any{"options": strings.Split(fe.Param(), " ")}
	}
	return nil
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var vf *validationFailed
	switch {
	case errors.As(err, &vf):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": vf.errs})
	case errors.Is(err, domain.ErrInvalidInput):
		field, _ := domain.InvalidField(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// userScope resolves the user a request acts on.
type userScope struct {
	defaultUserID int64
}

func (u userScope) userID(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		return u.defaultUserID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidInput("user_id", "must be a positive integer, got %q", raw)
	}
	return id, nil
}

func pathID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidInput("id", "must be a positive integer, got %q", raw)
	}
	return id, nil
}

// Date accepts either a calendar date or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return domain.InvalidInput("date", "unrecognised date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}
