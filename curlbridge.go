package curlbridge

// DefaultFilename is sent for multipart parts that carry no filename.
const DefaultFilename = "file.dat"

// WriteCallback receives data the engine pushes out: header lines and
// response body chunks. It returns the number of bytes it took care of;
// anything other than len(p) makes the engine abort the transfer.
type WriteCallback interface {
	WriteData(p []byte) int
}

// ReadCallback fills p with request body data and returns how many bytes it
// stored. Returning 0 signals end of body. Returning more than len(p) is a
// protocol violation and aborts the transfer.
type ReadCallback interface {
	ReadData(p []byte) int
}

// WriteFunc adapts a function to WriteCallback.
type WriteFunc func(p []byte) int

// WriteData calls f(p).
func (f WriteFunc) WriteData(p []byte) int { return f(p) }

// ReadFunc adapts a function to ReadCallback.
type ReadFunc func(p []byte) int

// ReadData calls f(p).
func (f ReadFunc) ReadData(p []byte) int { return f(p) }

// Field describes one multipart form field.
// Filename and ContentType are optional; an empty string means absent.
type Field interface {
	Name() string
	Filename() string
	ContentType() string
	Content() []byte
}

// Part is the plain Field implementation.
type Part struct {
	FieldName        string
	FieldFilename    string
	FieldContentType string
	Data             []byte
}

// NewPart builds a Part. filename and contentType may be empty.
func NewPart(name, filename, contentType string, content []byte) *Part {
	return &Part{
		FieldName:        name,
		FieldFilename:    filename,
		FieldContentType: contentType,
		Data:             content,
	}
}

// The accessors treat a nil *Part as a field with every attribute empty.

func (p *Part) Name() string {
	if p == nil {
		return ""
	}
	return p.FieldName
}

func (p *Part) Filename() string {
	if p == nil {
		return ""
	}
	return p.FieldFilename
}

func (p *Part) ContentType() string {
	if p == nil {
		return ""
	}
	return p.FieldContentType
}

func (p *Part) Content() []byte {
	if p == nil {
		return nil
	}
	return p.Data
}
