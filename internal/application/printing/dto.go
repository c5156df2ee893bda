package printing

// DocumentResponse is a rendered PDF ready to be streamed
type DocumentResponse struct {
	Filename    string
	ContentType string
	Content     []byte
	PageCount   int
}

// ContentTypePDF is the media type of every rendered document
const ContentTypePDF = "application/pdf"
