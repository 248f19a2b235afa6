package notes

import (
	"errors"
	"strings"
)

const (
	// MinDocumentIDLength is the minimum accepted length for a signer's
	// document ID after normalization.
	MinDocumentIDLength = 8
	// MinPhotoLength is the minimum encoded payload length for a delivery
	// photo to be considered valid. Shorter payloads are treated as
	// placeholders or truncated uploads.
	MinPhotoLength = 100
)

// ErrDocumentTooShort rejects signer document IDs under MinDocumentIDLength.
var ErrDocumentTooShort = errors.New("document id must be at least 8 characters")

// CaptureMode mirrors app.SignatureCaptureMode without importing it, keeping
// this package free of configuration dependencies.
type CaptureMode string

const (
	CaptureDocumentOnly        CaptureMode = "document-only"
	CaptureDocumentPlusDrawing CaptureMode = "document-plus-drawing"
)

func hasText(s *string) bool {
	return s != nil && *s != ""
}

// NormalizeDocumentID trims and uppercases a signer document ID. It is the
// single normalization point for every capture path.
func NormalizeDocumentID(raw string) (string, error) {
	doc := strings.ToUpper(strings.TrimSpace(raw))
	if len(doc) < MinDocumentIDLength {
		return "", ErrDocumentTooShort
	}
	return doc, nil
}

// PhotoValid reports whether an encoded photo payload passes the cheap
// corruption/placeholder check.
func PhotoValid(encoded string) bool {
	return len(encoded) > MinPhotoLength
}

// IsFullySigned is the completion predicate shared by every list filter,
// badge payload and the invoicing gate. A note is fully signed when the
// dual-signature record is complete, or when it carries the legacy
// photo+signature pair.
func IsFullySigned(n *DeliveryNote) bool {
	return hasNewDual(n) || hasLegacy(n)
}

// IsLegacyComplete distinguishes a purely legacy note from one where the
// dual-signature flow is in progress.
func IsLegacyComplete(n *DeliveryNote) bool {
	return hasLegacy(n) && !hasText(n.OriginSignature)
}

// FullySignedInMode applies the configured capture mode: in document-only
// deployments no drawing is ever captured, so completeness of the dual
// scheme rests on the two document IDs alone.
func FullySignedInMode(n *DeliveryNote, mode CaptureMode) bool {
	if mode == CaptureDocumentOnly {
		dual := hasText(n.OriginSignatureDocument) && hasText(n.DestinationSignatureDocument)
		return dual || hasLegacy(n)
	}
	return IsFullySigned(n)
}

func hasNewDual(n *DeliveryNote) bool {
	return hasText(n.OriginSignature) &&
		hasText(n.OriginSignatureDocument) &&
		hasText(n.DestinationSignature) &&
		hasText(n.DestinationSignatureDocument)
}

func hasLegacy(n *DeliveryNote) bool {
	return hasText(n.Photo) && hasText(n.Signature)
}

// CompletionInfo summarises signature progress for list badges and detail
// payloads.
type CompletionInfo struct {
	OriginSigned      bool     `json:"origin_signed"`
	DestinationSigned bool     `json:"destination_signed"`
	LegacyComplete    bool     `json:"legacy_complete"`
	FullySigned       bool     `json:"fully_signed"`
	Missing           []string `json:"missing,omitempty"`
}

// Completion evaluates a note against the shared predicate and reports what
// is still missing.
func Completion(n *DeliveryNote) CompletionInfo {
	info := CompletionInfo{
		OriginSigned:      hasText(n.OriginSignature) && hasText(n.OriginSignatureDocument),
		DestinationSigned: hasText(n.DestinationSignature) && hasText(n.DestinationSignatureDocument),
		LegacyComplete:    IsLegacyComplete(n),
		FullySigned:       IsFullySigned(n),
	}
	if info.FullySigned {
		return info
	}
	if !hasText(n.OriginSignature) {
		info.Missing = append(info.Missing, "origin_signature")
	}
	if !hasText(n.OriginSignatureDocument) {
		info.Missing = append(info.Missing, "origin_signature_document")
	}
	if !hasText(n.DestinationSignature) {
		info.Missing = append(info.Missing, "destination_signature")
	}
	if !hasText(n.DestinationSignatureDocument) {
		info.Missing = append(info.Missing, "destination_signature_document")
	}
	if !hasText(n.Photo) {
		info.Missing = append(info.Missing, "photo")
	}
	return info
}
