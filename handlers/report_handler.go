package handlers

import (
	"errors"
	"net/http"

	"github.com/mcoleague/match-center/middleware"
	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/services"
)

const maxImageUploadBytes = 10 << 20 // 10MB per request

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Preview accepts a multipart form with both score sheet images
// (mandante_imagem, visitante_imagem) and returns the editable OCR draft.
func (h *ReportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		badRequestResponse(w, r, errors.New("request must be multipart form data with both score sheet images"))
		return
	}

	homeImage, err := formImage(r, "mandante_imagem")
	if err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrScoreImagesRequired)
		return
	}
	defer homeImage.close()

	awayImage, err := formImage(r, "visitante_imagem")
	if err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrScoreImagesRequired)
		return
	}
	defer awayImage.close()

	preview, err := h.reportService.Preview(r.Context(), matchID, clubID, homeImage.upload, awayImage.upload)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, preview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type confirmReportRequest struct {
	Mandante        []models.PerformanceEntry `json:"mandante"`
	Visitante       []models.PerformanceEntry `json:"visitante"`
	PlacarMandante  *int                      `json:"placar_mandante"`
	PlacarVisitante *int                      `json:"placar_visitante"`
}

func (h *ReportHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input confirmReportRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.reportService.Confirm(r.Context(), matchID, clubID, services.ConfirmReportInput{
		Mandante:        input.Mandante,
		Visitante:       input.Visitante,
		PlacarMandante:  input.PlacarMandante,
		PlacarVisitante: input.PlacarVisitante,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type formFile struct {
	upload services.ImageUpload
	close  func()
}

func formImage(r *http.Request, field string) (*formFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	return &formFile{
		upload: services.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		},
		close: func() { file.Close() },
	}, nil
}
