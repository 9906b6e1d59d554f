package document

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	domdoc "github.com/kailas-cloud/lexlsh/internal/domain/document"
)

// Hash field names. fp and fp_text carry the same tokens for TAG and TEXT matching.
const (
	FieldFingerprint     = "fp"
	FieldFingerprintText = "fp_text"
	FieldVector          = "vector"
	FieldDims            = "dims"
	FieldContent         = "content"
	FieldEncoding        = "enc" // encoder options digest, also kept on the meta hash
	FieldOptions         = "options"
)

// TagSeparator joins fingerprint tokens inside the fp TAG field.
const TagSeparator = ","

// buildHashFields converts a domain Document into a flat map for HSET.
func buildHashFields(doc *domdoc.Document, textSearch bool, encoding string) map[string]string {
	m := map[string]string{
		FieldFingerprint: strings.Join(doc.Fingerprint(), TagSeparator),
		FieldVector:      vectorToBytes(doc.Vector()),
		FieldDims:        strconv.Itoa(doc.Dimensions()),
		FieldContent:     doc.Content(),
	}
	if textSearch {
		m[FieldFingerprintText] = strings.Join(doc.Fingerprint(), " ")
	}
	if encoding != "" {
		m[FieldEncoding] = encoding
	}
	return m
}

// parseHashFields converts a stored hash back into a domain Document.
func parseHashFields(id string, m map[string]string) domdoc.Document {
	return domdoc.Reconstruct(id, m[FieldContent], bytesToVector(m[FieldVector]), ParseFingerprint(m[FieldFingerprint]))
}

// ParseFingerprint splits a stored fp field into tokens.
func ParseFingerprint(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, TagSeparator)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	if s == "" || len(s)%4 != 0 {
		return nil
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
