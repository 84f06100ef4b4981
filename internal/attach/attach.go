// Package attach loads file attachments for multimodal calls: read the
// bytes, sniff the MIME type, honor explicit overrides.
package attach

import (
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/consoleagent/consoleagent/pkg/models"
)

// maxAttachmentSize caps attachment reads at 20MB, the provider inline
// upload limit.
const maxAttachmentSize = 20 << 20

// Part is a loaded attachment ready to hand to a provider adapter.
type Part struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Load reads every attachment, sniffing MIME types where no override was
// given. A single unreadable file fails the whole batch — an attachment
// the caller named but we cannot send would silently change the question.
func Load(files []models.FileAttachment) ([]Part, error) {
	if len(files) == 0 {
		return nil, nil
	}

	parts := make([]Part, 0, len(files))
	for _, f := range files {
		st, err := os.Stat(f.Path)
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", f.Path, err)
		}
		if st.Size() > maxAttachmentSize {
			return nil, fmt.Errorf("attachment %s: %d bytes exceeds %d byte limit", f.Path, st.Size(), maxAttachmentSize)
		}

		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", f.Path, err)
		}

		mime := f.MediaType
		if mime == "" {
			mime = mimetype.Detect(data).String()
		}

		parts = append(parts, Part{
			Name:     st.Name(),
			MIMEType: mime,
			Data:     data,
		})
	}
	return parts, nil
}
