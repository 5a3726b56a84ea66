package server

import (
	"net/http"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// sentinelStatus maps local failures that carry no typed error.
var sentinelStatus = []struct {
	target error
	status int
}{
	{sferrors.ErrTenantMissing, http.StatusBadRequest},
	{sferrors.ErrInvalidTenant, http.StatusBadRequest},
	{sferrors.ErrInvalidItem, http.StatusBadRequest},
	{sferrors.ErrUnknownSection, http.StatusNotFound},
	{sferrors.ErrNotFound, http.StatusNotFound},
}

// writeError maps err onto a status: validation 400, auth 401, remote
// errors keep the collaborator's status, a full local store 507.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	locale := localeFrom(r.Context())
	var (
		validationErr *sferrors.ValidationError
		authErr       *sferrors.AuthError
		remoteErr     *sferrors.RemoteError
	)
	switch {
	case sferrors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: validationErr.Message, Field: validationErr.Field})
		return
	case sferrors.As(err, &authErr):
		writeDetail(w, http.StatusUnauthorized, authErr.Error())
		return
	case sferrors.As(err, &remoteErr):
		writeDetail(w, remoteErr.Status, remoteErr.Message)
		return
	case sferrors.Is(err, sferrors.ErrQuotaExceeded):
		writeDetail(w, http.StatusInsufficientStorage, i18n.Text(locale, i18n.MsgQuotaExceeded))
		return
	}

	for _, m := range sentinelStatus {
		if sferrors.Is(err, m.target) {
			writeDetail(w, m.status, m.target.Error())
			return
		}
	}

	log.Err(err).Str("path", r.URL.Path).Str("tenant", tenantFrom(r.Context())).Msg("Request failed")
	writeDetail(w, http.StatusInternalServerError, i18n.Text(locale, i18n.MsgRemoteGeneric))
}
