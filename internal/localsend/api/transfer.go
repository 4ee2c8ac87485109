package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/0w0mewo/lsctl/internal/localsend/constants"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/gofiber/fiber/v2"
)

// PrepareUpload negotiates a send session. A non-empty pin is passed as ?pin=.
func (c *Client) PrepareUpload(ctx context.Context, body models.PrepareRequest, pin string) (Result, error) {
	var query url.Values
	if pin != "" {
		query = url.Values{"pin": {pin}}
	}

	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   constants.PrepareUploadPath,
		query:  query,
		json:   &body,
	})
}

// Upload sends one inline payload (text items).
func (c *Client) Upload(ctx context.Context, sessionID, fileID, token string, data []byte) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   constants.UploadPath,
		query: url.Values{
			"sessionId": {sessionID},
			"fileId":    {fileID},
			"token":     {token},
		},
		body:  data,
		ctype: fiber.MIMEOctetStream,
	})
}

// UploadBatch hands folders and filesystem-backed files to the backend in one call.
func (c *Client) UploadBatch(ctx context.Context, body models.BatchRequest) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   constants.UploadBatchPath,
		json:   &body,
	})
}

// Cancel aborts a send session this client started.
func (c *Client) Cancel(ctx context.Context, sessionID string) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodGet,
		path:   constants.CancelPath,
		query:  url.Values{"sessionId": {sessionID}},
	})
}

// CancelReceive aborts an incoming session.
func (c *Client) CancelReceive(ctx context.Context, sessionID string) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodGet,
		path:   constants.CancelReceivePath,
		query:  url.Values{"sessionId": {sessionID}},
	})
}

func (c *Client) ConfirmRecv(ctx context.Context, sessionID string, confirmed bool) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodGet,
		path:   constants.ConfirmRecvPath,
		query: url.Values{
			"sessionId": {sessionID},
			"confirmed": {strconv.FormatBool(confirmed)},
		},
	})
}

func (c *Client) ConfirmDownload(ctx context.Context, sessionID, clientKey string, confirmed bool) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodGet,
		path:   constants.ConfirmDownloadPath,
		query: url.Values{
			"sessionId": {sessionID},
			"clientKey": {clientKey},
			"confirmed": {strconv.FormatBool(confirmed)},
		},
	})
}

// NotifyShown tells the backend a received text or file was presented to the user.
func (c *Client) NotifyShown(ctx context.Context, sessionID, id string) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   constants.NotifyShownPath,
		query: url.Values{
			"sessionId": {sessionID},
			"id":        {id},
		},
	})
}

func (c *Client) CreateShareSession(ctx context.Context, body models.CreateShareRequest) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   constants.CreateShareSessionPath,
		json:   &body,
	})
}

func (c *Client) CloseShareSession(ctx context.Context, sessionID string) (Result, error) {
	return c.do(ctx, request{
		method: fiber.MethodDelete,
		path:   constants.CloseShareSessionPath,
		query:  url.Values{"sessionId": {sessionID}},
	})
}
