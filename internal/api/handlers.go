package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
)

const (
	msgImported     = "Anunț importat cu succes"
	msgImportFailed = "Importul a eșuat"
	msgIDRequired   = "ID-ul anunțului este obligatoriu"
	msgDeleteFailed = "Ștergerea anunțului a eșuat"
	msgReadFailed   = "Nu am putut încărca anunțurile"
	msgUpdateFailed = "Actualizarea anunțului a eșuat"
	msgBadStatus    = "Status invalid. Valori acceptate: ACTIVE, DRAFT, ARCHIVED"
	msgBadLimit     = "Limita trebuie să fie un număr pozitiv"
)

// authorize runs the admin gate for r.
func (s *Server) authorize(r *http.Request) error {
	if s.opts.Gate == nil {
		return notConfigured()
	}
	_, err := s.opts.Gate.Authorize(r.Context(), r.Header.Get("Authorization"))
	return err
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req listing.ImportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, msgInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, msgImportFailed)
		return
	}
	if err := s.authorize(r); err != nil {
		writeError(w, r, err, msgImportFailed)
		return
	}
	if s.opts.Importer == nil {
		writeError(w, r, notConfigured(), msgImportFailed)
		return
	}

	res, err := s.opts.Importer.Import(r.Context(), req)
	if err != nil {
		writeError(w, r, err, msgImportFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":    msgImported,
		"id":         res.ID,
		"autovit_id": res.AutovitID,
		"status":     res.Status,
		"created":    res.Created,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, msgInvalidBody)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, r, apperr.New(apperr.KindValidation, msgIDRequired), msgIDRequired)
		return
	}
	if err := listing.ValidateID(req.ID); err != nil {
		writeError(w, r, err, msgDeleteFailed)
		return
	}
	if err := s.authorize(r); err != nil {
		writeError(w, r, err, msgDeleteFailed)
		return
	}
	if s.opts.Remover == nil {
		writeError(w, r, notConfigured(), msgDeleteFailed)
		return
	}

	if err := s.opts.Remover.Delete(r.Context(), req.ID); err != nil {
		// storage details stay in the log
		if apperr.StatusOf(err) >= 500 {
			err = apperr.Wrap(apperr.KindStorage, msgDeleteFailed, err)
		}
		writeError(w, r, err, msgDeleteFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if s.opts.Catalog == nil {
		writeError(w, r, notConfigured(), msgReadFailed)
		return
	}
	out, err := s.opts.Catalog.Public(r.Context())
	if err != nil {
		writeError(w, r, err, msgReadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if s.opts.Catalog == nil {
		writeError(w, r, notConfigured(), msgReadFailed)
		return
	}
	p, err := s.opts.Catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, msgReadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleListingByAutovitID(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if s.opts.Catalog == nil {
		writeError(w, r, notConfigured(), msgReadFailed)
		return
	}
	p, err := s.opts.Catalog.GetByAutovitID(r.Context(), r.PathValue("autovitId"))
	if err != nil {
		writeError(w, r, err, msgReadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleAdminListings(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	var status models.Status
	if v := q.Get("status"); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			writeError(w, r, apperr.Wrap(apperr.KindValidation, msgBadStatus, err), msgReadFailed)
			return
		}
		status = st
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, apperr.New(apperr.KindValidation, msgBadLimit), msgReadFailed)
			return
		}
		limit = n
	}
	if err := s.authorize(r); err != nil {
		writeError(w, r, err, msgReadFailed)
		return
	}
	if s.opts.Catalog == nil {
		writeError(w, r, notConfigured(), msgReadFailed)
		return
	}

	out, err := s.opts.Catalog.Admin(r.Context(), status, limit)
	if err != nil {
		writeError(w, r, err, msgReadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, msgInvalidBody)
		return
	}
	if err := listing.ValidateID(req.ID); err != nil {
		writeError(w, r, err, msgUpdateFailed)
		return
	}
	if _, err := models.ParseStatus(req.Status); err != nil {
		writeError(w, r, apperr.Wrap(apperr.KindValidation, msgBadStatus, err), msgUpdateFailed)
		return
	}
	if err := s.authorize(r); err != nil {
		writeError(w, r, err, msgUpdateFailed)
		return
	}
	if s.opts.Editor == nil {
		writeError(w, r, notConfigured(), msgUpdateFailed)
		return
	}

	if err := s.opts.Editor.UpdateStatus(r.Context(), req.ID, req.Status); err != nil {
		writeError(w, r, err, msgUpdateFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ID string `json:"id"`
		listing.Patch
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, msgInvalidBody)
		return
	}
	if err := listing.ValidateID(req.ID); err != nil {
		writeError(w, r, err, msgUpdateFailed)
		return
	}
	if err := s.authorize(r); err != nil {
		writeError(w, r, err, msgUpdateFailed)
		return
	}
	if s.opts.Editor == nil {
		writeError(w, r, notConfigured(), msgUpdateFailed)
		return
	}

	l, err := s.opts.Editor.UpdateFields(r.Context(), req.ID, req.Patch)
	if err != nil {
		writeError(w, r, err, msgUpdateFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, l)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			if rec, ok := w.(*statusRecorder); ok {
				rec.err = err
			}
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
