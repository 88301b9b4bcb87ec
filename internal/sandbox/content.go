package sandbox

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

func newFileContent(p string, data []byte) *FileContent {
	mtype := mimetype.Detect(data)

	content := &FileContent{
		Path:     p,
		Data:     data,
		MimeType: mtype.String(),
		IsText:   isTextMIME(mtype),
	}

	if content.IsText && len(data) > 0 {
		if res, err := chardet.NewTextDetector().DetectBest(data); err == nil {
			content.Charset = res.Charset
		}
	}
	return content
}

// isTextMIME reports whether mtype descends from text/plain, which covers
// JSON, XML, source files and the like.
func isTextMIME(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
