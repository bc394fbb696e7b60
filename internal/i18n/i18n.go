// Package i18n renders user-facing API messages in the caller's
// language. Catalogs are embedded TOML files loaded into a go-i18n
// bundle.
package i18n

import (
	"embed"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Message IDs shared by the handlers.
const (
	MsgNotAuthorized        = "error.not_authorized"
	MsgInvalidCredentials   = "error.invalid_credentials"
	MsgRoleForbidden        = "error.role_forbidden"
	MsgNotAssigned          = "error.not_assigned"
	MsgFieldInvalid         = "error.field_invalid"
	MsgInvalidBody          = "error.invalid_body"
	MsgEventNotFound        = "error.event_not_found"
	MsgParticipantNotFound  = "error.participant_not_found"
	MsgTokenNotFound        = "error.token_not_found"
	MsgEventMismatch        = "error.event_mismatch"
	MsgAlreadyVerified      = "error.already_verified"
	MsgAlreadySubmitted     = "error.already_submitted"
	MsgCoordinatorNotFound  = "error.coordinator_not_found"
	MsgNoSubmissions        = "error.no_submissions"
	MsgNoExportData         = "error.no_export_data"
	MsgEventExists          = "error.event_exists"
	MsgCoordinatorExists    = "error.coordinator_exists"
	MsgUnknownAssignedEvent = "error.unknown_assigned_event"
	MsgInternal             = "error.internal"

	MsgLoginSuccess        = "message.login_success"
	MsgVerified            = "message.verified"
	MsgStatusUpdated       = "message.status_updated"
	MsgSubmissionRecorded  = "message.submission_recorded"
	MsgEventCreated        = "message.event_created"
	MsgCoordinatorCreated  = "message.coordinator_created"
	MsgAssignmentsReplaced = "message.assignments_replaced"
)

// Translator wraps a go-i18n bundle.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *slog.Logger
}

// NewTranslator loads the embedded catalogs. Unparseable defaultLocale
// values fall back to English.
func NewTranslator(defaultLocale string, logger *slog.Logger) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.fr.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Error("i18n: load catalog", "file", file, "error", err)
		}
	}
	return &Translator{bundle: bundle, defaultLanguage: tag, logger: logger}
}

// T renders key for the given Accept-Language value, falling back to
// the default language and finally to the key itself.
func (t *Translator) T(acceptLanguage, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	localizer := i18n.NewLocalizer(t.bundle, acceptLanguage, t.defaultLanguage.String())
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.logger.Warn("i18n: localize failed", "key", key, "accept_language", acceptLanguage, "error", err)
		return key
	}
	return msg
}
