package main

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"himakeu/models"
)

const maxReceiptBytes = 2 * 1024 * 1024

func receiptHeader(name, contentType string, size int64) *multipart.FileHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{Filename: name, Header: h, Size: size}
}

func TestValidateReceipt(t *testing.T) {
	tests := []struct {
		name string
		fh   *multipart.FileHeader
		want error
	}{
		{"nil header", nil, errReceiptMissing},
		{"jpeg under limit", receiptHeader("bukti.jpg", "image/jpeg", 1536*1024), nil},
		{"png under limit", receiptHeader("bukti.PNG", "image/png", 100), nil},
		{"uppercase ext", receiptHeader("BUKTI.JPEG", "image/jpeg", 100), nil},
		{"exactly at limit", receiptHeader("bukti.png", "image/png", maxReceiptBytes), nil},
		{"over limit", receiptHeader("bukti.jpg", "image/jpeg", 3*1024*1024), errReceiptTooLarge},
		{"pdf content type", receiptHeader("bukti.pdf", "application/pdf", 100), errReceiptType},
		{"image mime wrong ext", receiptHeader("bukti.gif", "image/png", 100), errReceiptType},
		{"no extension", receiptHeader("bukti", "image/jpeg", 100), errReceiptType},
		{"gif", receiptHeader("bukti.gif", "image/gif", 100), errReceiptType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateReceipt(tt.fh, maxReceiptBytes)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidateReceiptSizeBeforeType(t *testing.T) {
	// an oversized file is reported as too large even when the type is also bad
	fh := receiptHeader("bukti.pdf", "application/pdf", 3*1024*1024)
	assert.ErrorIs(t, validateReceipt(fh, maxReceiptBytes), errReceiptTooLarge)
}

func oversizedReceiptBody(t *testing.T, size int) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("period", "2026-08"))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="receipt"; filename="bukti.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xff}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

// the body cap on the upload route cuts an oversized request off at the
// transport, before multipart parsing can buffer it to temp files
func TestUploadBodyCap(t *testing.T) {
	app, r := testRouter(t)
	token := testToken(t, app, models.RoleMember)

	body, contentType := oversizedReceiptBody(t, 3*1024*1024)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/member/upload-payment", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errReceiptTooLarge.Error())
}

// requests under the cap still reach the handler's own validation path
func TestUploadUnderCapReachesValidation(t *testing.T) {
	app, r := testRouter(t)
	token := testToken(t, app, models.RoleMember)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("period", "2026-08"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="receipt"; filename="bukti.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/member/upload-payment", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errReceiptType.Error())
}
