// Package pdftext reads the text layer of the first page of a PDF.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"
)

// ErrNoPages is returned for a document whose page tree is empty.
var ErrNoPages = errors.New("pdf has no pages")

var disableConfigOnce sync.Once

// FirstPage parses data as a PDF and returns the text shown on page 1,
// including text drawn inside Form XObjects. Strings are mapped through each
// font's ToUnicode CMap or encoding. Later pages are never decoded.
func FirstPage(data []byte) (string, error) {
	// pdfcpu otherwise creates a config dir under the user's home
	disableConfigOnce.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount == 0 {
		return "", ErrNoPages
	}
	pageDict, _, inherited, err := ctx.PageDict(1, false)
	if err != nil {
		return "", fmt.Errorf("page 1: %w", err)
	}
	content, err := ctx.PageContent(pageDict, 1)
	if errors.Is(err, model.ErrNoContent) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("page 1 content: %w", err)
	}
	var res *resources
	if inherited != nil {
		res = loadResources(ctx, inherited.Resources, 0)
	}
	return norm.NFKC.String(textOf(content, res)), nil
}
