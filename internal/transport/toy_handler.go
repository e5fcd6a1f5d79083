package transport

import (
	"fmt"
	"net/http"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/middleware"
	"toy-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateToyRequest represents the toy creation payload. Image fields are
// owned by the image endpoints and ignored here.
type CreateToyRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Review      string   `json:"review"`
	Rating      int      `json:"rating"`
	Tags        []string `json:"tags,omitempty"`
}

// ImageResponse wraps a toy returned by an image operation.
type ImageResponse struct {
	Message string      `json:"message"`
	Toy     *domain.Toy `json:"toy,omitempty"`
}

func createToyRules() []middleware.Rule {
	return []middleware.Rule{
		middleware.RequiredString("title"),
		middleware.OneOf("category", domain.Categories, true),
		middleware.RequiredString("description"),
		middleware.RequiredString("review"),
		middleware.IntRange("rating", domain.MinRating, domain.MaxRating, true),
		middleware.StringList("tags"),
	}
}

func updateToyRules() []middleware.Rule {
	return []middleware.Rule{
		middleware.OptionalString("title"),
		middleware.OneOf("category", domain.Categories, false),
		middleware.OptionalString("description"),
		middleware.OptionalString("review"),
		middleware.IntRange("rating", domain.MinRating, domain.MaxRating, false),
		middleware.StringList("tags"),
	}
}

// ToyHandler handles HTTP requests for toys and their images
type ToyHandler struct {
	toyService service.ToyService
	uploads    UploadLimits
	logger     *zap.Logger
}

// NewToyHandler creates a new ToyHandler
func NewToyHandler(toyService service.ToyService, uploads UploadLimits, logger *zap.Logger) *ToyHandler {
	return &ToyHandler{
		toyService: toyService,
		uploads:    uploads,
		logger:     logger,
	}
}

// RegisterRoutes registers all toy routes
func (h *ToyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/toys", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)

			r.Post("/images", h.AddImage)
			r.Post("/images/multiple", h.AddMultipleImages)
			r.Get("/images", h.GetImages)
			r.Delete("/images/{filename}", h.DeleteImage)
			r.Put("/images/{filename}/main", h.SetMainImage)
		})
	})
}

// Create handles toy creation
func (h *ToyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateToyRequest
	if err := middleware.DecodeAndCheck(r, &req, createToyRules()...); err != nil {
		h.logger.Debug("Toy validation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	toy, err := h.toyService.Create(r.Context(), &domain.Toy{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Review:      req.Review,
		Rating:      req.Rating,
		Tags:        req.Tags,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Toy created", zap.String("toy_id", toy.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, toy)
}

// List handles GET /toys?page&limit
func (h *ToyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	toys, err := h.toyService.FindAll(r.Context(), page, limit)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toys)
}

func (h *ToyHandler) Get(w http.ResponseWriter, r *http.Request) {
	toy, err := h.toyService.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toy)
}

// Update handles partial toy updates
func (h *ToyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.ToyPatch
	if err := middleware.DecodeAndCheck(r, &patch, updateToyRules()...); err != nil {
		h.logger.Debug("Toy update validation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	toy, err := h.toyService.Update(r.Context(), chi.URLParam(r, "id"), &patch)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toy)
}

func (h *ToyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.toyService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Toy deleted", zap.String("toy_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// AddImage handles a single multipart upload under the "image" field
func (h *ToyHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	file, err := h.uploads.Single(w, r)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	toy, err := h.toyService.AddImage(r.Context(), chi.URLParam(r, "id"), file)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Image added", zap.String("toy_id", toy.ID), zap.Int("images", len(toy.Images)))
	middleware.RespondWithJSON(w, http.StatusOK, ImageResponse{Message: "Image added successfully", Toy: toy})
}

// AddMultipleImages handles a multipart upload under the "images" field
func (h *ToyHandler) AddMultipleImages(w http.ResponseWriter, r *http.Request) {
	files, err := h.uploads.Multiple(w, r)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	toy, err := h.toyService.AddMultipleImages(r.Context(), chi.URLParam(r, "id"), files)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Images added", zap.String("toy_id", toy.ID), zap.Int("count", len(files)))
	middleware.RespondWithJSON(w, http.StatusOK, ImageResponse{
		Message: fmt.Sprintf("%d images added successfully", len(files)),
		Toy:     toy,
	})
}

func (h *ToyHandler) GetImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.toyService.GetAllImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, images)
}

func (h *ToyHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, filename := chi.URLParam(r, "id"), chi.URLParam(r, "filename")
	if err := h.toyService.DeleteImage(r.Context(), id, filename); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Image deleted", zap.String("toy_id", id), zap.String("filename", filename))
	middleware.RespondWithMessage(w, http.StatusOK, "Image deleted successfully")
}

func (h *ToyHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
	toy, err := h.toyService.SetMainImage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "filename"))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ImageResponse{Message: "Main image updated successfully", Toy: toy})
}
