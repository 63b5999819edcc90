package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

const multipartMemory = 8 << 20

type chatRequest struct {
	SessionID string `json:"session_id"`
	UserText  string `json:"user_text"`
}

type fieldUpdateRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type mobileRequest struct {
	Mobile string `json:"mobile"`
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	reply, err := rt.services.Chat.Reply(r.Context(), req.SessionID, req.UserText)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordChatReply(string(reply.Source))
	}
	if reply.Options == nil {
		reply.Options = []string{}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) chatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	messages, err := rt.services.Chat.History(r.Context(), sessionID)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (rt *Router) uploadEmiratesID(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.UploadMaxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, err := readUploadFiles(r.MultipartForm.File["file"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := rt.services.Uploads.Upload(r.Context(), chi.URLParam(r, "session_id"), files)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.ObserveMissingFields(len(result.MissingFields))
		rt.metrics.RecordRecommendation(placeLabel(result.IssuingPlaceDetected), recommendationOutcome(result))
	}
	writeJSON(w, http.StatusOK, result)
}

func readUploadFiles(headers []*multipart.FileHeader) ([]domain.UploadFile, error) {
	files := make([]domain.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
		}
		files = append(files, domain.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

// placeLabel keeps the metric label set closed; raw OCR places become "other".
func placeLabel(place *string) string {
	if place == nil {
		return ""
	}
	switch domain.Place(*place) {
	case domain.PlaceDubai:
		return "dubai"
	case domain.PlaceAbuDhabi:
		return "abu_dhabi"
	default:
		return "other"
	}
}

func recommendationOutcome(result *domain.UploadResult) string {
	switch {
	case len(result.Products) > 0:
		return "products"
	case result.Message != nil:
		return "message"
	default:
		return "none"
	}
}

func (rt *Router) updateRecordField(w http.ResponseWriter, r *http.Request) {
	recordID, err := strconv.ParseInt(chi.URLParam(r, "record_id"), 10, 64)
	if err != nil || recordID <= 0 {
		writeError(w, http.StatusBadRequest, "record id must be a positive integer")
		return
	}

	var req fieldUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	update, err := rt.services.Records.UpdateField(r.Context(), recordID, req.Field, req.Value)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": update.Message,
		"fields":  update.Fields,
	})
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := rt.services.Sessions.Get(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) sessionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := rt.services.Sessions.Status(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) saveMobile(w http.ResponseWriter, r *http.Request) {
	var req mobileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	update, err := rt.services.Sessions.SaveMobile(r.Context(), chi.URLParam(r, "session_id"), req.Mobile)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	products := update.Products
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"message":      update.Message,
		"products":     products,
		"info_message": update.InfoMessage,
	})
}
