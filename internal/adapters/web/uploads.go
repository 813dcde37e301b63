package web

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"pos-backoffice/internal/app"
	"pos-backoffice/internal/ingest"
)

// uploadRequest extracts the "file" part of a multipart upload. The declared
// filename and size travel with the stream into the pipeline's metadata stage.
func uploadRequest(w http.ResponseWriter, r *http.Request) (app.UploadRequest, multipart.File, bool) {
	if err := r.ParseMultipartForm(ingest.MaxFileSize); err != nil {
		writeError(w, r, "invalid multipart upload", "BAD_REQUEST", http.StatusBadRequest)
		return app.UploadRequest{}, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "missing file part", "BAD_REQUEST", http.StatusBadRequest)
		return app.UploadRequest{}, nil, false
	}
	req := app.UploadRequest{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}
	return req, file, true
}

// respondWithReport returns the upload outcome as a downloadable TSV artifact.
// An upload whose header parsed always answers with a report, never a count.
func respondWithReport(w http.ResponseWriter, res *app.UploadResult) {
	w.Header().Set("X-Rows-Applied", strconv.Itoa(res.Applied))
	w.Header().Set("X-Rows-Rejected", strconv.Itoa(res.Rejected))
	w.Header().Set("X-Rows-Structural", strconv.Itoa(res.Structural))
	writeTSV(w, res.ReportName, res.Report)
}

func (h *Handler) uploadProducts(w http.ResponseWriter, r *http.Request) {
	req, file, ok := uploadRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.svc.ImportProducts(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respondWithReport(w, res)
}

func (h *Handler) uploadInventory(w http.ResponseWriter, r *http.Request) {
	req, file, ok := uploadRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.svc.ImportInventory(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	respondWithReport(w, res)
}
