// Package pdfmeta reads the document information dictionary of PDF files.
package pdfmeta

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"dsar/internal/detection/models"
)

var pdfMagic = []byte("%PDF-")

// Extractor implements the detection engine's MetadataExtractor with pdfcpu.
type Extractor struct {
	conf *model.Configuration
}

func New() *Extractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{conf: conf}
}

// Extract returns nil metadata for buffers that are not PDF documents.
func (x *Extractor) Extract(ctx context.Context, document []byte) (md *models.DocumentMetadata, err error) {
	if !bytes.HasPrefix(document, pdfMagic) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// pdfcpu panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			md, err = nil, fmt.Errorf("read pdf: %v", r)
		}
	}()

	pdfCtx, err := api.ReadAndValidate(bytes.NewReader(document), x.conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	return &models.DocumentMetadata{
		Title:    pdfCtx.Title,
		Author:   pdfCtx.Author,
		Subject:  pdfCtx.Subject,
		Creator:  pdfCtx.Creator,
		Producer: pdfCtx.Producer,
		Keywords: pdfCtx.Keywords,
	}, nil
}
