package httppresentation

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	appcatalog "github.com/Zhima-Mochi/lessonshop/internal/application/catalog"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"
)

const maxUploadBytes = 10 << 20

func (h *Handler) handleListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.deps.Catalog.List(r.Context())
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch lessons", err)
		return
	}
	writeJSON(w, http.StatusOK, toLessonResponses(lessons))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.deps.Catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toLessonResponses(lessons))
}

func (h *Handler) handleAddLesson(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields required")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	topic := strings.TrimSpace(r.FormValue("topic"))
	location := strings.TrimSpace(r.FormValue("location"))
	priceRaw := strings.TrimSpace(r.FormValue("price"))
	spaceRaw := strings.TrimSpace(r.FormValue("space"))
	file, header, ferr := r.FormFile("image")
	if ferr != nil || topic == "" || location == "" || priceRaw == "" || spaceRaw == "" {
		writeMessage(w, http.StatusBadRequest, "All fields required")
		return
	}
	defer file.Close()

	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		writeMessage(w, http.StatusBadRequest, "Invalid price")
		return
	}
	space, err := strconv.Atoi(spaceRaw)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid space")
		return
	}

	image, err := h.deps.Images.Save(header.Filename, file)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Failed to add lesson", err)
		return
	}

	id, err := h.deps.Catalog.Add(r.Context(), appcatalog.AddLessonInput{
		Topic:    topic,
		Location: location,
		Price:    price,
		Space:    space,
		Image:    image,
	})
	if err != nil {
		if rerr := h.deps.Images.Remove(image); rerr != nil {
			logctx.FromOr(r.Context(), h.log).Warn("image_cleanup_failed",
				observability.F("image", image),
				observability.F("error", rerr),
			)
		}
		writeLessonError(w, err, "Failed to add lesson")
		return
	}
	writeJSON(w, http.StatusCreated, addLessonResponse{Message: "Lesson added successfully", ID: id})
}

func (h *Handler) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	var req updateLessonRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid lesson fields", err)
		return
	}
	patch := req.patch()
	if patch.Empty() {
		writeMessage(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if err := h.deps.Catalog.Update(r.Context(), r.PathValue("id"), patch); err != nil {
		writeLessonError(w, err, "Failed to update lesson")
		return
	}
	writeMessage(w, http.StatusOK, "Lesson updated successfully")
}

func (h *Handler) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeLessonError(w, err, "Failed to delete lesson")
		return
	}
	writeMessage(w, http.StatusOK, "Deleted successfully")
}
