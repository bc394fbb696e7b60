package i18n

import (
	"io"
	"log/slog"
	"testing"
)

func newTestTranslator() *Translator {
	return NewTranslator("en", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTranslate(t *testing.T) {
	tr := newTestTranslator()
	tests := []struct {
		name   string
		accept string
		key    string
		data   map[string]any
		want   string
	}{
		{"english default", "", MsgTokenNotFound, nil, "Invalid token. Participant not found."},
		{"french", "fr-FR,fr;q=0.9", MsgEventNotFound, nil, "Événement introuvable"},
		{"unsupported falls back", "de", MsgVerified, nil, "Verification successful"},
		{"template data", "en", MsgRoleForbidden, map[string]any{"Role": "COORDINATOR"},
			"User role 'COORDINATOR' is not authorized to access this route"},
		{"unknown key", "en", "error.nope", nil, "error.nope"},
		{"empty key", "en", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.T(tt.accept, tt.key, tt.data); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.accept, tt.key, got, tt.want)
			}
		})
	}
}

func TestEveryMessageHasEnglish(t *testing.T) {
	tr := newTestTranslator()
	for _, key := range []string{
		MsgNotAuthorized, MsgInvalidCredentials, MsgRoleForbidden, MsgNotAssigned,
		MsgFieldInvalid, MsgInvalidBody, MsgEventNotFound, MsgParticipantNotFound,
		MsgTokenNotFound, MsgEventMismatch, MsgAlreadyVerified, MsgAlreadySubmitted,
		MsgCoordinatorNotFound, MsgNoSubmissions, MsgNoExportData, MsgEventExists,
		MsgCoordinatorExists, MsgUnknownAssignedEvent, MsgInternal,
		MsgLoginSuccess, MsgVerified, MsgStatusUpdated, MsgSubmissionRecorded,
		MsgEventCreated, MsgCoordinatorCreated, MsgAssignmentsReplaced,
	} {
		if got := tr.T("en", key, map[string]any{"Role": "R", "Field": "f", "Reason": "r"}); got == key {
			t.Errorf("missing english message for %s", key)
		}
	}
}
