package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func dualSignedNote() *DeliveryNote {
	return &DeliveryNote{
		OriginSignature:              strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument:      strptr("12345678A"),
		DestinationSignature:         strptr("data:image/png;base64,bbb"),
		DestinationSignatureDocument: strptr("87654321B"),
	}
}

func legacyNote() *DeliveryNote {
	return &DeliveryNote{
		Photo:     strptr(strings.Repeat("x", 150)),
		Signature: strptr("data:image/png;base64,ccc"),
	}
}

func TestIsFullySignedDual(t *testing.T) {
	note := dualSignedNote()
	assert.True(t, IsFullySigned(note))

	missingEach := []func(*DeliveryNote){
		func(n *DeliveryNote) { n.OriginSignature = nil },
		func(n *DeliveryNote) { n.OriginSignatureDocument = nil },
		func(n *DeliveryNote) { n.DestinationSignature = nil },
		func(n *DeliveryNote) { n.DestinationSignatureDocument = nil },
	}
	for _, clear := range missingEach {
		n := dualSignedNote()
		clear(n)
		assert.False(t, IsFullySigned(n))
	}
}

func TestIsFullySignedLegacy(t *testing.T) {
	note := legacyNote()
	assert.True(t, IsFullySigned(note))
	assert.True(t, IsLegacyComplete(note))

	// Photo alone is not enough.
	note.Signature = nil
	assert.False(t, IsFullySigned(note))

	// Signature alone is not enough either.
	note = legacyNote()
	note.Photo = nil
	assert.False(t, IsFullySigned(note))
}

func TestIsFullySignedEmptyStringsCountAsMissing(t *testing.T) {
	note := dualSignedNote()
	note.DestinationSignatureDocument = strptr("")
	assert.False(t, IsFullySigned(note))
}

func TestLegacyCompleteExcludesDualInProgress(t *testing.T) {
	note := legacyNote()
	note.OriginSignature = strptr("data:image/png;base64,ddd")
	assert.False(t, IsLegacyComplete(note))
	// Legacy pair still satisfies the overall predicate.
	assert.True(t, IsFullySigned(note))
}

func TestFullySignedInModeDocumentOnly(t *testing.T) {
	note := &DeliveryNote{
		OriginSignatureDocument:      strptr("12345678A"),
		DestinationSignatureDocument: strptr("87654321B"),
	}
	assert.False(t, IsFullySigned(note))
	assert.True(t, FullySignedInMode(note, CaptureDocumentOnly))
	assert.False(t, FullySignedInMode(note, CaptureDocumentPlusDrawing))

	assert.True(t, FullySignedInMode(legacyNote(), CaptureDocumentOnly))
}

func TestNormalizeDocumentID(t *testing.T) {
	doc, err := NormalizeDocumentID("  12345678a ")
	require.NoError(t, err)
	assert.Equal(t, "12345678A", doc)

	_, err = NormalizeDocumentID("1234567")
	assert.ErrorIs(t, err, ErrDocumentTooShort)

	// Whitespace does not count toward the minimum.
	_, err = NormalizeDocumentID("   1234567   ")
	assert.ErrorIs(t, err, ErrDocumentTooShort)
}

func TestPhotoValid(t *testing.T) {
	assert.False(t, PhotoValid(""))
	assert.False(t, PhotoValid(strings.Repeat("x", MinPhotoLength)))
	assert.True(t, PhotoValid(strings.Repeat("x", MinPhotoLength+1)))
}

func TestCompletionMissingList(t *testing.T) {
	note := &DeliveryNote{
		OriginSignature:         strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument: strptr("12345678A"),
	}
	info := Completion(note)
	assert.True(t, info.OriginSigned)
	assert.False(t, info.DestinationSigned)
	assert.False(t, info.FullySigned)
	assert.Contains(t, info.Missing, "destination_signature")
	assert.Contains(t, info.Missing, "destination_signature_document")
	assert.Contains(t, info.Missing, "photo")
	assert.NotContains(t, info.Missing, "origin_signature")
}

func TestCompletionFullySignedHasNoMissing(t *testing.T) {
	info := Completion(dualSignedNote())
	assert.True(t, info.FullySigned)
	assert.Empty(t, info.Missing)
}
