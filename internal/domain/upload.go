package domain

import "io"

// Upload is an incoming file as received from a multipart form.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}
