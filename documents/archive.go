package documents

import (
	"context"
	"fmt"

	"github.com/URVIL2512/Finance-Suite-sub001/utils"
)

// Archiver stores a rendered document and returns where it went.
type Archiver interface {
	Archive(ctx context.Context, s InvoiceSnapshot, data []byte, contentType string) (string, error)
}

// GCSArchiver uploads to a Cloud Storage bucket under <business>/invoices/.
type GCSArchiver struct {
	Bucket string
}

func (a GCSArchiver) Archive(ctx context.Context, s InvoiceSnapshot, data []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/invoices/%s", s.BusinessId, s.FileName())
	uri, err := utils.UploadBytesToGCS(ctx, a.Bucket, objectName, data, contentType)
	if err != nil {
		return "", utils.NewDependencyError("gcs", err)
	}
	return uri, nil
}
