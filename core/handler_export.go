package core

import (
	"encoding/json"
	"net/http"

	"github.com/caasmo/identityoutbox/security/export"
)

const mimeTypeAgeEncryption = "application/age-encryption"

// ExportProfileHandler returns the caller's own profile encrypted with age
// to the recipient key configured in config.Export, so the exported blob
// can only be opened with the matching identity the account holder holds
// offline. Gated on a non-empty recipient rather than an Enabled flag,
// since an empty key can never produce a usable ciphertext.
func (a *App) ExportProfileHandler(w http.ResponseWriter, r *http.Request) {
	recipient := a.Config().Export.RecipientPublicKey
	if recipient == "" {
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	u := UserFromContext(r.Context())
	plaintext, err := json.Marshal(toProfileDTO(u))
	if err != nil {
		a.Logger().Error("export profile: marshal", "error", err)
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	ciphertext, err := export.Encrypt(plaintext, recipient)
	if err != nil {
		a.Logger().Error("export profile: encrypt", "error", err)
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", mimeTypeAgeEncryption)
	w.Header().Set("Content-Disposition", `attachment; filename="profile.age"`)
	w.WriteHeader(http.StatusOK)
	w.Write(ciphertext)
}
