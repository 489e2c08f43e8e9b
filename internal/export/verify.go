package export

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// pageCount parses b and returns its page count.
func pageCount(b []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(b), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("export: verify: %w", err)
	}
	return n, nil
}

// optimize rewrites b with pdfcpu's optimizer.
func optimize(b []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(b), &out, pdfConfig()); err != nil {
		return nil, fmt.Errorf("export: optimize: %w", err)
	}
	return out.Bytes(), nil
}
