package mode

// Mode selects how fingerprint tokens are matched in the index.
type Mode string

// Search mode constants.
const (
	// Auto uses Text when the backend supports it, Tag otherwise.
	Auto Mode = "auto"
	// Tag matches tokens as exact TAG values; candidates are unranked.
	Tag Mode = "tag"
	// Text matches tokens as TEXT terms ranked by BM25.
	Text Mode = "text"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Auto || m == Tag || m == Text
}

// Resolve maps Auto to a concrete mode for a backend.
func (m Mode) Resolve(textSupported bool) Mode {
	if m != Auto {
		return m
	}
	if textSupported {
		return Text
	}
	return Tag
}
