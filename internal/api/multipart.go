package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
)

// streamMultipart encodes fields and one file part on the fly so the file is
// never buffered in memory. The returned reader must be consumed or closed by
// the HTTP transport.
func streamMultipart(fields map[string]string, fileField string, file Upload) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(mw, fields, fileField, file)
		if closeErr := mw.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeMultipart(mw *multipart.Writer, fields map[string]string, fileField string, file Upload) error {
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if file.Content == nil {
		return fmt.Errorf("file %q has no content", file.Name)
	}
	part, err := mw.CreateFormFile(fileField, filepath.Base(file.Name))
	if err != nil {
		return fmt.Errorf("create part %s: %w", fileField, err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("copy %s: %w", file.Name, err)
	}
	return nil
}
