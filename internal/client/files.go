// ABOUTME: Image upload to the backend or the Lambda upload proxy
// ABOUTME: Extracts the stored file URL from several response shapes

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultUploadFolder is the folder used when none is given.
const DefaultUploadFolder = "others"

// FileAPI wraps image uploads.
type FileAPI struct {
	c *Client
}

// Upload sends one file and returns the URL it was stored at. The result
// is unsuccessful when the response carries no file path.
//
// A configured upload URL is called without refresh: the bearer goes only
// to an upload URL on the API's own origin, and a 401 from it leaves the
// session untouched.
func (f *FileAPI) Upload(ctx context.Context, file File, folder string) (string, Result) {
	if folder == "" {
		folder = DefaultUploadFolder
	}
	form := NewForm().AddFile("file", file).AddField("folder", folder)
	opts := Options{Method: http.MethodPost, Body: Multipart(form)}

	var res Result
	if f.c.uploadURL != "" {
		opts.Public = true
		opts.bearerOnly = f.c.sameOrigin(f.c.uploadURL)
		res = f.c.call(ctx, f.c.uploadURL, f.c.uploadURL, opts)
	} else {
		res = f.c.Call(ctx, "/files/upload", opts)
	}
	if !res.Success {
		return "", res
	}

	path := extractFilePath(res.Raw)
	if path == "" {
		return "", decodeFailure(res, fmt.Errorf("upload response has no filePath"))
	}
	return path, res
}

// extractFilePath looks for filePath in data.filePath, filePath, and the
// same two places inside a "body" that may itself be a JSON string.
func extractFilePath(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return ""
	}

	// A Lambda proxy integration wraps the payload in body, often as a string
	body := outer
	if b, ok := outer["body"]; ok {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			var inner map[string]json.RawMessage
			if json.Unmarshal([]byte(s), &inner) == nil {
				body = inner
			}
		} else {
			var inner map[string]json.RawMessage
			if json.Unmarshal(b, &inner) == nil {
				body = inner
			}
		}
	}

	for _, candidate := range []map[string]json.RawMessage{body, outer} {
		if p := filePathIn(candidate); p != "" {
			return p
		}
	}
	return ""
}

func filePathIn(m map[string]json.RawMessage) string {
	if data, ok := m["data"]; ok {
		var d struct {
			FilePath string `json:"filePath"`
		}
		if json.Unmarshal(data, &d) == nil && d.FilePath != "" {
			return strings.TrimSpace(d.FilePath)
		}
	}
	if fp, ok := m["filePath"]; ok {
		var s string
		if json.Unmarshal(fp, &s) == nil {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
