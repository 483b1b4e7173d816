package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/skip2/go-qrcode"

	"ms-seating/internal/models"
)

// Generator renders door-scannable QR codes for sold seats. The
// payload is AES-encrypted so a scanned code cannot be forged by
// editing the embedded JSON.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

type ticketPayload struct {
	Barcode    string `json:"barcode"`
	EventID    string `json:"event_id"`
	RowName    string `json:"row_name"`
	SeatNumber int    `json:"seat_number"`
}

// EncodeTicket returns a 256x256 PNG QR code for the seat's ticket.
func (g *Generator) EncodeTicket(seat models.Seat) ([]byte, error) {
	data, err := json.Marshal(ticketPayload{
		Barcode:    seat.Barcode,
		EventID:    seat.EventID,
		RowName:    seat.RowName,
		SeatNumber: seat.SeatNumber,
	})
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// DecodePayload reverses EncodeTicket's encryption for scanner-side
// verification.
func (g *Generator) DecodePayload(encoded string) (*models.Seat, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) < aes.BlockSize {
		return nil, io.ErrUnexpectedEOF
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	iv := raw[:aes.BlockSize]
	data := make([]byte, len(raw)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, raw[aes.BlockSize:])

	var payload ticketPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &models.Seat{
		EventID:    payload.EventID,
		RowName:    payload.RowName,
		SeatNumber: payload.SeatNumber,
		Barcode:    payload.Barcode,
	}, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
