package queries

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
)

// Characters that can appear in a GitHub login, including legacy logins with
// repeated or trailing hyphens and managed-user logins with an underscore
// suffix. Whether the account exists is left to GitHub.
var loginPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const maxLoginLength = 100

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("github_login", func(fl validator.FieldLevel) bool {
		return loginPattern.MatchString(fl.Field().String())
	})
	return v
}

// GetCalendarQuery asks for the contribution calendar of a GitHub user
type GetCalendarQuery struct {
	Username string `json:"username" validate:"required,max=100,github_login"`
}

// Validate validates the query
func (q GetCalendarQuery) Validate() error {
	if strings.TrimSpace(q.Username) == "" {
		return apperrors.NewInvalidUsernameError("Username required")
	}
	if err := validate.Struct(q); err != nil {
		return apperrors.NewInvalidUsernameError("invalid GitHub username").WithCause(err)
	}
	return nil
}

// GetCalendarResult is the calendar plus how it was obtained
type GetCalendarResult struct {
	Result calendar.Result
	Source calendar.Source
	Cached bool
}
