package handler

import "net/http"

// shareLinkResponse is the body of GET /share/link.
type shareLinkResponse struct {
	Link string `json:"link"`
}

// importRequest is the body of POST /share/import.
type importRequest struct {
	Link string `json:"link"`
}

// ExportAll handles GET /share/export, returning the full dataset snapshot.
func (s *Server) ExportAll(w http.ResponseWriter, r *http.Request) {
	data, err := s.share.ExportAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// LastExport handles GET /share/last, returning the snapshot cached by the
// most recent export. 404 until something has been exported.
func (s *Server) LastExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.share.LastExport(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GenerateShareLink handles GET /share/link.
func (s *Server) GenerateShareLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.share.GenerateLink(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shareLinkResponse{Link: link})
}

// ImportShareLink handles POST /share/import.
func (s *Server) ImportShareLink(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := s.share.ImportLink(r.Context(), req.Link); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
