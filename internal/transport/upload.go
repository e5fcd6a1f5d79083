package transport

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"toy-catalog/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

const (
	singleImageField   = "image"
	multipleImageField = "images"

	// multipartOverhead is the allowance for part headers and boundaries.
	multipartOverhead = 1 << 20
)

// AllowedImageTypes are the MIME types accepted by the upload boundary.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// UploadLimits is the upload boundary. It parses multipart requests and
// turns every accepted part into a domain.UploadedFile, rejecting requests
// before any toy lookup happens.
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

func (u UploadLimits) tooLarge() error {
	return domain.UploadRejected(fmt.Sprintf("File too large. Maximum size is %gMB", float64(u.MaxFileSize)/(1024*1024)))
}

// Single reads the one image sent under the "image" field.
func (u UploadLimits) Single(w http.ResponseWriter, r *http.Request) (domain.UploadedFile, error) {
	files, err := u.parse(w, r, 1, "Only one file may be sent in the image field", singleImageField)
	if err != nil {
		return domain.UploadedFile{}, err
	}
	if len(files) == 0 {
		return domain.UploadedFile{}, domain.UploadRejected("No image has been uploaded")
	}
	return files[0], nil
}

// Multiple reads up to MaxFiles images sent under "images" (or "images[]"), in request order.
func (u UploadLimits) Multiple(w http.ResponseWriter, r *http.Request) ([]domain.UploadedFile, error) {
	tooMany := fmt.Sprintf("Too many files. Maximum is %d", u.MaxFiles)
	files, err := u.parse(w, r, u.MaxFiles, tooMany, multipleImageField, multipleImageField+"[]")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.UploadRejected("No images have been uploaded")
	}
	return files, nil
}

// parse streams the multipart body part by part, so a surplus file is
// reported as soon as its header arrives rather than after the whole
// body has been buffered.
func (u UploadLimits) parse(w http.ResponseWriter, r *http.Request, maxFiles int, tooMany string, fields ...string) ([]domain.UploadedFile, error) {
	// Room for one file past the limit plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, u.MaxFileSize*int64(maxFiles+1)+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, domain.UploadRejected("Malformed multipart body")
	}

	var files []domain.UploadedFile
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, u.bodyError(err)
		}
		if p.FileName() == "" || !slices.Contains(fields, p.FormName()) {
			continue
		}
		if len(files) == maxFiles {
			return nil, domain.UploadRejected(tooMany)
		}

		file, err := u.read(p)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, nil
}

func (u UploadLimits) bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return u.tooLarge()
	}
	return domain.UploadRejected("Malformed multipart body")
}

func (u UploadLimits) read(p *multipart.Part) (domain.UploadedFile, error) {
	content, err := io.ReadAll(io.LimitReader(p, u.MaxFileSize+1))
	if err != nil {
		return domain.UploadedFile{}, u.bodyError(err)
	}
	if int64(len(content)) > u.MaxFileSize {
		return domain.UploadedFile{}, u.tooLarge()
	}

	mtype := mimetype.Detect(content)
	if !mimetype.EqualsAny(mtype.String(), AllowedImageTypes...) {
		return domain.UploadedFile{}, domain.UploadRejected(
			"Unsupported file type. Only images are allowed: " + strings.Join(imageTypeNames(), ", "))
	}

	return domain.UploadedFile{
		OriginalName: p.FileName(),
		MimeType:     mtype.String(),
		SizeBytes:    int64(len(content)),
		Content:      content,
	}, nil
}

func imageTypeNames() []string {
	names := make([]string, 0, len(AllowedImageTypes))
	for _, t := range AllowedImageTypes {
		names = append(names, strings.TrimPrefix(t, "image/"))
	}
	return names
}
