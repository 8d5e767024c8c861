// Package yaml reads scrape target definitions from YAML files.
package yaml

import (
	"errors"
	"io"
	"os"

	"github.com/fwojciec/scrapesense"
	yamlv3 "gopkg.in/yaml.v3"
)

// File is the on-disk layout of a targets file.
//
//	targets:
//	  - id: mvp_test_page
//	    url: file:///path/to/test_page.html
//	    fields:
//	      - name: product_title
//	        description: The main H1 title of the product
//	        selector: h1
type File struct {
	Targets []*scrapesense.Target `yaml:"targets"`
}

// DecodeTargets parses and validates every target in r.
// Unknown keys are rejected so typos don't silently drop selectors.
func DecodeTargets(r io.Reader) ([]*scrapesense.Target, error) {
	dec := yamlv3.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, scrapesense.Errorf(scrapesense.EINVALID, "targets file is empty")
		}
		return nil, scrapesense.Errorf(scrapesense.EINVALID, "invalid targets file: %v", err)
	}
	if len(f.Targets) == 0 {
		return nil, scrapesense.Errorf(scrapesense.EINVALID, "targets file defines no targets")
	}

	seen := make(map[string]bool, len(f.Targets))
	for i, t := range f.Targets {
		if t == nil {
			return nil, scrapesense.Errorf(scrapesense.EINVALID, "target %d is empty", i)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, scrapesense.Errorf(scrapesense.EINVALID, "duplicate target %q", t.ID)
		}
		seen[t.ID] = true
	}

	return f.Targets, nil
}

// LoadTargets reads and decodes the targets file at path.
func LoadTargets(path string) ([]*scrapesense.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTargets(f)
}
