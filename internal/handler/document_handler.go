package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scan-station/internal/domain"
	"scan-station/internal/service"
)

// maxImportSize bounds PDF uploads at 100 MB.
const maxImportSize = 100 << 20

// DocumentHandler handles document and page HTTP requests.
type DocumentHandler struct {
	docService     *service.DocumentService
	ocrService     *service.OCRService
	exportService  *service.ExportService
	importService  *service.ImportService
	storageService *service.StorageService
	searchService  *service.SearchService
	logger         domain.Logger
}

// NewDocumentHandler creates a new document handler. searchService may be
// nil when semantic search is not configured.
func NewDocumentHandler(
	docService *service.DocumentService,
	ocrService *service.OCRService,
	exportService *service.ExportService,
	importService *service.ImportService,
	storageService *service.StorageService,
	searchService *service.SearchService,
	logger domain.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		ocrService:     ocrService,
		exportService:  exportService,
		importService:  importService,
		storageService: storageService,
		searchService:  searchService,
		logger:         logger,
	}
}

type createDocumentRequest struct {
	Name string `json:"name"`
}

// CreateDocument makes a new empty document.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	doc, err := h.docService.Create(req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// ListDocuments returns every document, newest first.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if docs == nil {
		docs = make([]*domain.Document, 0)
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDocument returns one document with its page metadata.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docService.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes the document and its search index entries.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.docService.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	if h.searchService != nil {
		if err := h.searchService.RemoveDocument(r.Context(), id); err != nil {
			h.logger.Warn("could not remove document from search index", "document", id, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ReorderPages moves a page to a new position.
func (h *DocumentHandler) ReorderPages(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	doc, err := h.docService.ReorderPages(mux.Vars(r)["id"], req.From, req.To)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// RemovePage deletes one page and renumbers the rest.
func (h *DocumentHandler) RemovePage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := h.docService.RemovePage(vars["id"], vars["pageID"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type rotateRequest struct {
	Degrees int `json:"degrees"`
}

// RotatePage adds to the page's logical rotation.
func (h *DocumentHandler) RotatePage(w http.ResponseWriter, r *http.Request) {
	var req rotateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	vars := mux.Vars(r)
	page, err := h.docService.RotatePage(vars["id"], vars["pageID"], req.Degrees)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type ocrRequest struct {
	Language string `json:"language"`
	Engine   string `json:"engine"`
}

// RecognizePage runs OCR on one page and returns the result.
func (h *DocumentHandler) RecognizePage(w http.ResponseWriter, r *http.Request) {
	var req ocrRequest
	if err := decodeJSON(r, &req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	vars := mux.Vars(r)
	page, err := h.docService.GetPage(vars["id"], vars["pageID"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	preferCloud := req.Engine == "cloud"
	if err := h.ocrService.RecognizePage(r.Context(), page, req.Language, preferCloud); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page.OCR)
}

// IndexDocument embeds the document's OCR text for semantic search.
func (h *DocumentHandler) IndexDocument(w http.ResponseWriter, r *http.Request) {
	if h.searchService == nil {
		writeError(w, http.StatusNotImplemented, "semantic search is not configured")
		return
	}
	doc, err := h.docService.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	indexed, err := h.searchService.IndexDocument(r.Context(), doc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"document_id": doc.ID, "pages_indexed": indexed})
}

type exportRequest struct {
	Format string `json:"format"`
	Upload string `json:"upload"`
	Path   string `json:"path"`
}

// ExportDocument renders the document. With an upload target the artifacts
// go to cloud storage; without one a PDF streams back directly. Multi-file
// image exports always need an upload target.
func (h *DocumentHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Format == "" {
		req.Format = string(service.ExportPDF)
	}

	doc, err := h.docService.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	artifacts, err := h.exportService.Export(r.Context(), doc, service.ExportFormat(req.Format))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Upload == "" {
		if len(artifacts) != 1 {
			writeError(w, http.StatusBadRequest, "image exports need an upload target")
			return
		}
		artifact := artifacts[0]
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(artifact.Data)
		return
	}

	prefix := req.Path
	if prefix == "" {
		prefix = doc.ID
	}
	locations := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		location, err := h.storageService.Upload(r.Context(), req.Upload, prefix+"/"+artifact.Filename, artifact.Data)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		locations = append(locations, location)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"uploaded": locations})
}

// ImportDocument builds a document from an uploaded PDF. The request is
// multipart with the file under "file" and an optional "name" field.
func (h *DocumentHandler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload: "+err.Error())
		return
	}

	name := r.FormValue("name")
	if name == "" && header.Filename != "" {
		name = header.Filename
	}

	start := time.Now()
	doc, err := h.importService.ImportPDF(data, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.docService.Save(doc); err != nil {
		writeServiceError(w, err)
		return
	}
	h.logger.Info("pdf import complete", "document", doc.ID, "pages", doc.PageCount(), "took", time.Since(start).String())
	writeJSON(w, http.StatusCreated, doc)
}
