package pushover

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Priority represents the notification priority level.
type Priority int

const (
	PriorityLowest    Priority = -2
	PriorityLow       Priority = -1
	PriorityNormal    Priority = 0
	PriorityHigh      Priority = 1
	PriorityEmergency Priority = 2
)

func (p Priority) IsValid() bool {
	return p >= PriorityLowest && p <= PriorityEmergency
}

func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "lowest"
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityEmergency:
		return "emergency"
	}
	return "invalid"
}

// Field limits documented by the Pushover message API.
const (
	TitleMaxLength    = 250
	MessageMaxLength  = 1024
	URLMaxLength      = 512
	URLTitleMaxLength = 100
	RetryMinSeconds   = 30
	ExpireMaxSeconds  = 86400

	DefaultRetrySeconds  = 120
	DefaultExpireSeconds = 600
	DefaultSound         = "pushover"
)

// Message holds one outbound notification. The form tag is the parameter
// name on the wire and the field name used in validation errors.
type Message struct {
	Recipient string   `form:"user" validate:"required"`
	Device    string   `form:"device"`
	Title     string   `form:"title" validate:"max=250"`
	Content   string   `form:"message" validate:"required,max=1024"`
	Priority  Priority `form:"priority" validate:"min=-2,max=2"`
	Retry     int      `form:"retry" validate:"omitempty,min=30"`
	Expire    int      `form:"expire" validate:"omitempty,max=86400"`
	HTML      bool     `form:"html"`
	Sound     string   `form:"sound"`
	URL       string   `form:"url" validate:"max=512"`
	URLTitle  string   `form:"url_title" validate:"max=100"`
}

// NewMessage creates a message with API defaults applied.
func NewMessage(recipient, content string) *Message {
	return &Message{
		Recipient: recipient,
		Content:   content,
		Priority:  PriorityNormal,
		Retry:     DefaultRetrySeconds,
		Expire:    DefaultExpireSeconds,
		Sound:     DefaultSound,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the message against the API field constraints. The first
// violation found is returned as a ValidationError; no network I/O happens
// until validation passes.
func (m *Message) Validate() error {
	if m.Content == "" {
		return NewValidationError("message", "a message is required")
	}
	if m.Priority == PriorityEmergency {
		if m.Retry == 0 {
			return NewValidationError("retry", "is required for emergency priority")
		}
		if m.Expire == 0 {
			return NewValidationError("expire", "is required for emergency priority")
		}
	}
	if err := validate.Struct(m); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return NewValidationError("message", err.Error())
		}
		fe := fieldErrs[0]
		return NewValidationError(fe.Field(), fieldErrorMessage(fe))
	}
	return nil
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "user":
		return "a recipient token is required"
	case "title", "message", "url", "url_title":
		return fmt.Sprintf("must be %s characters or fewer", fe.Param())
	case "priority":
		return "must be between -2 (lowest) and 2 (emergency)"
	case "retry":
		return "must be at least 30 seconds"
	case "expire":
		return "must be no more than 86400 seconds"
	}
	return "is invalid"
}

// values serializes the message into the form body the messages endpoint
// expects. Optional fields are omitted when unset; url_title is only sent
// alongside a url.
func (m *Message) values(token string) url.Values {
	v := url.Values{}
	v.Set("token", token)
	v.Set("user", m.Recipient)
	v.Set("message", m.Content)
	v.Set("priority", strconv.Itoa(int(m.Priority)))
	if m.HTML {
		v.Set("html", "1")
	} else {
		v.Set("html", "0")
	}
	if m.Device != "" {
		v.Set("device", m.Device)
	}
	if m.Title != "" {
		v.Set("title", m.Title)
	}
	if m.Sound != "" {
		v.Set("sound", m.Sound)
	}
	if m.Retry > 0 {
		v.Set("retry", strconv.Itoa(m.Retry))
	}
	if m.Expire > 0 {
		v.Set("expire", strconv.Itoa(m.Expire))
	}
	if m.URL != "" {
		v.Set("url", m.URL)
		if m.URLTitle != "" {
			v.Set("url_title", m.URLTitle)
		}
	}
	return v
}
