// ABOUTME: Files resource: upload, paginated listing, preview lookup, download and delete
// ABOUTME: Uploads are sent as multipart/form-data under the "file" field

package api

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/2389/docreview/internal/httpclient"
)

// File is an uploaded source file.
type File struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	Status     string    `json:"status"`
	CreatedAt  Timestamp `json:"created_at"`
	PreviewURL string    `json:"preview_url,omitempty"`
}

// FilePreview describes how a file can be previewed.
// PreviewType is one of "direct", "huawei" or "unsupported".
type FilePreview struct {
	PreviewURL  string `json:"preview_url,omitempty"`
	FileURL     string `json:"file_url"`
	PreviewType string `json:"preview_type"`
	FileType    string `json:"file_type"`
	FileName    string `json:"file_name"`
}

type FilesAPI struct {
	c requester
}

// Upload sends content as a new file named filename.
func (f *FilesAPI) Upload(ctx context.Context, filename string, content io.Reader) (*File, error) {
	var out File
	files := []httpclient.FormFile{{Field: "file", Filename: filename, Content: content}}
	if err := f.c.PostMultipart(ctx, "/files/upload", nil, files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of the caller's files. The backend defaults are skip=0, limit=20.
func (f *FilesAPI) List(ctx context.Context, skip, limit int) ([]File, error) {
	var out []File
	if err := f.c.Get(ctx, "/files/list", pageQuery(skip, limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FilesAPI) Preview(ctx context.Context, fileID int64) (*FilePreview, error) {
	var out FilePreview
	if err := f.c.Get(ctx, idPath("/files", fileID, "/preview"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download streams the stored file into w.
func (f *FilesAPI) Download(ctx context.Context, fileID int64, w io.Writer) (int64, error) {
	return f.c.Download(ctx, idPath("/files", fileID, "/download"), nil, w)
}

func (f *FilesAPI) Delete(ctx context.Context, fileID int64) (*Message, error) {
	var out Message
	if err := f.c.Delete(ctx, idPath("/files", fileID, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageQuery(skip, limit int) url.Values {
	return url.Values{
		"skip":  {strconv.Itoa(skip)},
		"limit": {strconv.Itoa(limit)},
	}
}
