package domain

import "encoding/json"

// Bookmark is a saved reference to external content inside a Step.
//
// Bookmarks have no identity of their own: they live and die with the
// Step (and therefore the Pathway) that holds them.
type Bookmark struct {
	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Context is the user's note on why the link belongs in the step.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// Type is the curation kind (article, video, reference, ...).
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// ContentType is the MIME type observed or declared for the target.
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`

	// Added is the unix-millisecond timestamp the bookmark was saved.
	Added int64 `json:"added,omitempty" yaml:"added,omitempty"`

	// ─────────────────────────────
	// Link audit (written by the link checker only)
	// ─────────────────────────────

	LastChecked *int64  `json:"lastChecked" yaml:"lastChecked,omitempty"`
	Status      *int    `json:"status" yaml:"status,omitempty"`
	Available   *bool   `json:"available" yaml:"available,omitempty"`
	RedirectURL *string `json:"redirectUrl" yaml:"redirectUrl,omitempty"`
	CheckError  *string `json:"checkError" yaml:"checkError,omitempty"`

	// Extra holds fields written by other clients (tags, favicons, ...).
	Extra map[string]any `json:"-" yaml:",inline"`

	addedRaw json.RawMessage
}

// UnmarshalJSON accepts added as a number or a date string and keeps
// unknown fields in Extra.
func (b *Bookmark) UnmarshalJSON(data []byte) error {
	type plain Bookmark
	*b = Bookmark{}
	aux := struct {
		*plain
		Added json.RawMessage `json:"added,omitempty"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Added, b.addedRaw = decodeMillis(aux.Added)

	extra, err := unknownFields(data, bookmarkFields)
	if err != nil {
		return err
	}
	b.Extra = extra
	return nil
}

func (b Bookmark) MarshalJSON() ([]byte, error) {
	type plain Bookmark
	aux := struct {
		plain
		Added any `json:"added,omitempty"`
	}{plain: plain(b), Added: encodeMillis(b.Added, b.addedRaw)}
	data, err := json.Marshal(aux)
	if err != nil {
		return nil, err
	}
	return withExtra(data, b.Extra, bookmarkFields)
}

// ClearAudit resets every link-audit field to null.
func (b *Bookmark) ClearAudit() {
	b.LastChecked = nil
	b.Status = nil
	b.Available = nil
	b.RedirectURL = nil
	b.CheckError = nil
}
