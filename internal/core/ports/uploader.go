package ports

import "context"

// UploadResult identifies a stored media object.
type UploadResult struct {
	URL string
	Key string
}

// ImageUploader abstracts the external media host. Upload stores the raw
// bytes under the given folder and returns the public URL plus the storage
// key needed to delete the object later.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, contentType, folder string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}
