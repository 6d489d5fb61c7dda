package tokeniser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stream re-joins words split across consecutive chunks of a document.
//
// When a chunk does not end in whitespace its trailing partial word is
// held back and prefixed onto the next chunk of the same document. The
// held text is released on its own when the document changes or the
// stream is flushed, so concatenating every returned segment of one
// document reproduces its text exactly.
type Stream struct {
	document string
	carry    string
}

// Push feeds the next chunk of document and returns the text segments
// that are complete and ready to tokenise.
func (s *Stream) Push(document, text string) []string {
	var segments []string

	if document != s.document {
		if s.carry != "" {
			segments = append(segments, s.carry)
		}
		s.document = document
		s.carry = ""
	}

	text = s.carry + text
	s.carry = ""
	if text == "" {
		return segments
	}

	last, _ := utf8.DecodeLastRuneInString(text)
	if !unicode.IsSpace(last) {
		cut := strings.LastIndexFunc(text, unicode.IsSpace)
		// cut is the byte offset of the last whitespace rune; step past it.
		if cut >= 0 {
			_, size := utf8.DecodeRuneInString(text[cut:])
			cut += size
		} else {
			cut = 0
		}
		s.carry = text[cut:]
		text = text[:cut]
	}

	if text != "" {
		segments = append(segments, text)
	}
	return segments
}

// Flush returns any held partial word and resets the stream.
func (s *Stream) Flush() string {
	carry := s.carry
	s.carry = ""
	s.document = ""
	return carry
}

// Pending reports whether a partial word is held back.
func (s *Stream) Pending() bool {
	return s.carry != ""
}
