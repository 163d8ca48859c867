package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Client talks to an Evolution-style WhatsApp gateway. Two operations exist:
// plain text and a single-document send with the text as caption.
type Client struct {
	BaseURL  string
	APIKey   string
	Instance string
	HTTP     *http.Client
}

// Attachment describes the document side of a media send.
type Attachment struct {
	URL      string
	MimeType string
	FileName string
}

type textPayload struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type mediaPayload struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	MimeType  string `json:"mimetype"`
	Caption   string `json:"caption"`
	Media     string `json:"media"`
	FileName  string `json:"fileName"`
}

// SendText posts a plain text message to an already normalized number.
func (c *Client) SendText(ctx context.Context, number, text string) (int, error) {
	return c.post(ctx, "/message/sendText/", textPayload{Number: number, Text: text})
}

// SendDocument posts a document message with the given caption. Mime type and
// file name fall back to the PDF defaults the dashboard uploads.
func (c *Client) SendDocument(ctx context.Context, number, caption string, att Attachment) (int, error) {
	p := mediaPayload{
		Number:    number,
		MediaType: "document",
		MimeType:  att.MimeType,
		Caption:   caption,
		Media:     att.URL,
		FileName:  att.FileName,
	}
	if p.MimeType == "" {
		p.MimeType = "application/pdf"
	}
	if p.FileName == "" {
		p.FileName = "document.pdf"
	}
	return c.post(ctx, "/message/sendMedia/", p)
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + path + c.Instance
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.APIKey)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Anything non-2xx counts as a failed attempt; the body is only useful as
	// error text.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "gateway send failed"
		}
		return resp.StatusCode, errors.New(msg)
	}
	return resp.StatusCode, nil
}
