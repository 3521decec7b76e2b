package util

import (
	"io"
	"mime/multipart"
	"net/http"
)

// SniffContentType reads the first 512 bytes of an uploaded file to detect
// its real content type.
func SniffContentType(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
