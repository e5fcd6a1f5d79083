package domain

import (
	"strings"
	"time"
)

// Toy categories accepted by the catalog. The values are stored and served as-is.
const (
	CategoryDolls          = "Muñecas"
	CategoryCars           = "Carros"
	CategoryBoardGames     = "Juegos de mesa"
	CategoryPlush          = "Peluches"
	CategoryLegos          = "Legos"
	CategoryActionFigures  = "Figuras de acción"
	CategoryBicycles       = "Bicicletas"
	CategoryEducationalToy = "Juguetes educativos"
)

// Categories lists every valid toy category in display order.
var Categories = []string{
	CategoryDolls,
	CategoryCars,
	CategoryBoardGames,
	CategoryPlush,
	CategoryLegos,
	CategoryActionFigures,
	CategoryBicycles,
	CategoryEducationalToy,
}

const (
	MinRating = 1
	MaxRating = 5
)

// ImageRef points at a stored upload owned by a single toy
type ImageRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Toy represents a reviewed toy in the catalog.
//
// ImageURL is empty whenever Images is empty, otherwise it references one
// element of Images. Only the image workflow in the service layer mutates
// Images and ImageURL.
type Toy struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Review      string     `json:"review"`
	Rating      int        `json:"rating"`
	ImageURL    string     `json:"imageUrl"`
	Images      []ImageRef `json:"images"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToyPatch carries the fields of a partial toy update. Nil fields are left untouched.
type ToyPatch struct {
	Title       *string   `json:"title,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	Review      *string   `json:"review,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *ToyPatch) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.Description == nil &&
		p.Review == nil && p.Rating == nil && p.Tags == nil
}

// Apply merges the patch into the toy in place.
func (p *ToyPatch) Apply(t *Toy) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Review != nil {
		t.Review = *p.Review
	}
	if p.Rating != nil {
		t.Rating = *p.Rating
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
}

// ImageIndex returns the position of filename in Images, or -1.
func (t *Toy) ImageIndex(filename string) int {
	for i, img := range t.Images {
		if img.Filename == filename {
			return i
		}
	}
	return -1
}

// IsMainImage reports whether ImageURL references filename.
func (t *Toy) IsMainImage(filename string) bool {
	if t.ImageURL == "" || filename == "" {
		return false
	}
	return t.ImageURL == filename || strings.HasSuffix(t.ImageURL, "/"+filename)
}

// UploadedFile is an image accepted at the upload boundary: MIME type and
// size have already been checked against the configured limits.
type UploadedFile struct {
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Content      []byte
}
