package response

import (
	"encoding/base64"
	"net/http"
)

// DataURI renders binary content as an inline, self-describing data string
// usable directly as an <img src> value. Empty input yields "".
func DataURI(b []byte, mime string) string {
	if len(b) == 0 {
		return ""
	}
	if mime == "" {
		mime = http.DetectContentType(b)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// JPEGDataURI is the encoding used for normalized article images, which
// are always stored as JPEG.
func JPEGDataURI(b []byte) string {
	return DataURI(b, "image/jpeg")
}
