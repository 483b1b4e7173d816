package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-seating/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestEncodeTicketProducesPNG(t *testing.T) {
	g := NewGenerator("door-scanner-secret")

	png, err := g.EncodeTicket(models.Seat{
		EventID:    "event1",
		RowName:    "A",
		SeatNumber: 7,
		Barcode:    "bc-7",
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestEncryptDecodeRoundTrip(t *testing.T) {
	g := NewGenerator("door-scanner-secret")

	encoded, err := encryptAES([]byte(`{"barcode":"bc-7","event_id":"event1","row_name":"A","seat_number":7}`), g.secret)
	require.NoError(t, err)

	seat, err := g.DecodePayload(encoded)
	require.NoError(t, err)
	assert.Equal(t, "bc-7", seat.Barcode)
	assert.Equal(t, "event1", seat.EventID)
	assert.Equal(t, "A", seat.RowName)
	assert.Equal(t, 7, seat.SeatNumber)
}

func TestDecodeWithWrongSecretFails(t *testing.T) {
	g := NewGenerator("door-scanner-secret")
	other := NewGenerator("some-other-secret")

	encoded, err := encryptAES([]byte(`{"barcode":"bc-7"}`), g.secret)
	require.NoError(t, err)

	// Wrong key yields garbage bytes that are not valid JSON.
	_, err = other.DecodePayload(encoded)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	g := NewGenerator("door-scanner-secret")

	_, err := g.DecodePayload("") // shorter than one AES block
	assert.Error(t, err)

	_, err = g.DecodePayload("not base64!!")
	assert.Error(t, err)
}
