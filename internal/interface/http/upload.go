package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps in-memory reads of multipart files (20 MB, matching
// the historical upload limit of this API).
const maxUploadBytes = 20 << 20

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFileBytes reads an optional multipart file field fully into memory.
// A missing field is not an error; it returns (nil, nil).
func formFileBytes(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}
